package signals

import (
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/disposable"
)

type Observer[E any] func(E)

type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) disposable.Disposable
	Detach(observer Observer[E], observerID ...any)
	Notify(event E)
}
