package option

import "fmt"

// Option holds a value that may be absent. Query options (skip, limit) and
// aggregation results over empty input use it instead of sentinel values.
type Option[T any] struct {
	val   T
	valid bool
}

func Some[T any](val T) Option[T] {
	return Option[T]{val: val, valid: true}
}

func Nothing[T any]() Option[T] {
	return Option[T]{}
}

// Of builds an Option from the comma-ok idiom, e.g. a map lookup.
func Of[T any](val T, ok bool) Option[T] {
	if !ok {
		return Nothing[T]()
	}
	return Some(val)
}

func (o Option[T]) IsSome() bool {
	return o.valid
}

func (o Option[T]) IsNothing() bool {
	return !o.valid
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.val, o.valid
}

// Unwrap returns the contained value.
// Panics if the Option is Nothing.
func (o Option[T]) Unwrap() T {
	if !o.valid {
		panic("called Unwrap on a Nothing Option")
	}
	return o.val
}

func (o Option[T]) UnwrapOr(def T) T {
	if o.valid {
		return o.val
	}
	return def
}

func (o Option[T]) UnwrapOrZero() T {
	return o.val
}

// Map applies f to the contained value, keeping Nothing as Nothing.
func Map[T any, U any](o Option[T], f func(T) U) Option[U] {
	if o.valid {
		return Some(f(o.val))
	}
	return Nothing[U]()
}

func (o Option[T]) String() string {
	if o.valid {
		return fmt.Sprintf("Some(%v)", o.val)
	}
	return "Nothing"
}
