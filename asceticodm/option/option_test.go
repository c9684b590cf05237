package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSome(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		o := Some(42)
		assert.True(t, o.IsSome())
		assert.False(t, o.IsNothing())
		assert.Equal(t, 42, o.Unwrap())
	})

	t.Run("zero value is still present", func(t *testing.T) {
		o := Some(0)
		assert.True(t, o.IsSome())
		assert.Equal(t, 0, o.Unwrap())
	})

	t.Run("nil interface is still present", func(t *testing.T) {
		o := Some[any](nil)
		assert.True(t, o.IsSome())
		assert.Nil(t, o.Unwrap())
	})
}

func TestNothing(t *testing.T) {
	o := Nothing[int]()
	assert.True(t, o.IsNothing())
	assert.False(t, o.IsSome())
	assert.PanicsWithValue(t, "called Unwrap on a Nothing Option", func() {
		o.Unwrap()
	})
}

func TestOf(t *testing.T) {
	m := map[string]int{"skip": 5}

	skip := Of(m["skip"], true)
	assert.Equal(t, 5, skip.Unwrap())

	v, ok := m["limit"]
	limit := Of(v, ok)
	assert.True(t, limit.IsNothing())
}

func TestGet(t *testing.T) {
	v, ok := Some("street").Get()
	assert.True(t, ok)
	assert.Equal(t, "street", v)

	v, ok = Nothing[string]().Get()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestUnwrapOr(t *testing.T) {
	assert.Equal(t, 42, Some(42).UnwrapOr(0))
	assert.Equal(t, 99, Nothing[int]().UnwrapOr(99))
	assert.Equal(t, 0, Nothing[int]().UnwrapOrZero())
}

func TestMap(t *testing.T) {
	t.Run("some applies function", func(t *testing.T) {
		result := Map(Some(51), func(v int) float64 { return float64(v) / 5 })
		assert.InDelta(t, 10.2, result.Unwrap(), 1e-9)
	})

	t.Run("nothing skips function", func(t *testing.T) {
		called := false
		result := Map(Nothing[int](), func(v int) int {
			called = true
			return v
		})
		assert.True(t, result.IsNothing())
		assert.False(t, called)
	})
}

func TestString(t *testing.T) {
	assert.Equal(t, "Some(42)", Some(42).String())
	assert.Equal(t, "Nothing", Nothing[int]().String())
}
