package signals

import (
	"reflect"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/disposable"
)

type subscription[E any] struct {
	key      any
	observer Observer[E]
}

// Hub delivers each event synchronously to its observers in the order they
// were attached. An observer key is attached at most once.
type Hub[E any] struct {
	subs []subscription[E]
}

func NewHub[E any]() *Hub[E] {
	return &Hub[E]{}
}

func (h *Hub[E]) Attach(observer Observer[E], observerID ...any) disposable.Disposable {
	key := observerKey(observer, observerID)
	if h.find(key) < 0 {
		h.subs = append(h.subs, subscription[E]{key: key, observer: observer})
	}
	return disposable.NewDisposable(func() {
		h.Detach(observer, key)
	})
}

func (h *Hub[E]) Detach(observer Observer[E], observerID ...any) {
	i := h.find(observerKey(observer, observerID))
	if i < 0 {
		return
	}
	subs := make([]subscription[E], 0, len(h.subs)-1)
	subs = append(subs, h.subs[:i]...)
	h.subs = append(subs, h.subs[i+1:]...)
}

// Notify iterates over a snapshot, so observers may detach themselves.
func (h *Hub[E]) Notify(event E) {
	for _, sub := range h.subs {
		sub.observer(event)
	}
}

func (h *Hub[E]) Len() int {
	return len(h.subs)
}

func (h *Hub[E]) find(key any) int {
	for i, sub := range h.subs {
		if sub.key == key {
			return i
		}
	}
	return -1
}

// Without an explicit id an observer is keyed by its function pointer.
func observerKey[E any](observer Observer[E], observerID []any) any {
	if len(observerID) > 0 {
		return observerID[0]
	}
	return reflect.ValueOf(observer).Pointer()
}
