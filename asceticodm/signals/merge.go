package signals

import (
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/disposable"
)

type merged[E any] []Signal[E]

// Merge combines several signals into one: attaching subscribes to every
// source and the returned disposable unsubscribes from all of them.
func Merge[E any](sources ...Signal[E]) Signal[E] {
	return merged[E](sources)
}

func (m merged[E]) Attach(observer Observer[E], observerID ...any) disposable.Disposable {
	subs := make([]disposable.Disposable, len(m))
	for i, source := range m {
		subs[i] = source.Attach(observer, observerID...)
	}
	return disposable.NewCompositeDisposable(subs...)
}

func (m merged[E]) Detach(observer Observer[E], observerID ...any) {
	for _, source := range m {
		source.Detach(observer, observerID...)
	}
}

func (m merged[E]) Notify(event E) {
	for _, source := range m {
		source.Notify(event)
	}
}
