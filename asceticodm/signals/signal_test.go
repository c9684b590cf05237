package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type queryRan struct {
	operation string
}

func TestHubNotifiesInAttachOrder(t *testing.T) {
	h := NewHub[queryRan]()
	var got []string
	h.Attach(func(e queryRan) { got = append(got, "a:"+e.operation) }, "a")
	h.Attach(func(e queryRan) { got = append(got, "b:"+e.operation) }, "b")

	h.Notify(queryRan{"count"})
	assert.Equal(t, []string{"a:count", "b:count"}, got)
}

func TestHubAttachesKeyOnce(t *testing.T) {
	h := NewHub[queryRan]()
	calls := 0
	h.Attach(func(queryRan) { calls++ }, "metrics")
	h.Attach(func(queryRan) { calls++ }, "metrics")

	h.Notify(queryRan{"first"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, h.Len())
}

func TestHubDetach(t *testing.T) {
	h := NewHub[queryRan]()
	calls := 0
	observer := Observer[queryRan](func(queryRan) { calls++ })

	h.Attach(observer)
	h.Detach(observer)
	h.Notify(queryRan{"sum"})
	assert.Equal(t, 0, calls)

	sub := h.Attach(observer, "metrics")
	sub.Dispose()
	h.Notify(queryRan{"sum"})
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, h.Len())

	h.Detach(observer, "missing")
}

func TestHubObserverDetachesItself(t *testing.T) {
	h := NewHub[queryRan]()
	var got []string
	var sub interface{ Dispose() }
	sub = h.Attach(func(e queryRan) {
		got = append(got, "once:"+e.operation)
		sub.Dispose()
	}, "once")
	h.Attach(func(e queryRan) { got = append(got, "always:"+e.operation) }, "always")

	h.Notify(queryRan{"shift"})
	h.Notify(queryRan{"shift"})
	assert.Equal(t, []string{"once:shift", "always:shift", "always:shift"}, got)
}

func TestMerge(t *testing.T) {
	h1 := NewHub[queryRan]()
	h2 := NewHub[queryRan]()
	all := Merge[queryRan](h1, h2)
	calls := 0

	sub := all.Attach(func(queryRan) { calls++ }, "metrics")
	h1.Notify(queryRan{"min"})
	h2.Notify(queryRan{"max"})
	assert.Equal(t, 2, calls)

	all.Notify(queryRan{"distinct"})
	assert.Equal(t, 4, calls)

	sub.Dispose()
	all.Notify(queryRan{"group"})
	assert.Equal(t, 4, calls)
	assert.Equal(t, 0, h1.Len())
}
