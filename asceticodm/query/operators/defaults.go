package operators

import (
	"cmp"
	"math"
	"time"
)

func registerComparison[T cmp.Ordered](reg *OperatorRegistry) {
	RegisterBinary[T, T](reg, OperatorEq, func(a, b T) (any, error) { return a == b, nil })
	RegisterBinary[T, T](reg, OperatorNe, func(a, b T) (any, error) { return a != b, nil })
	RegisterBinary[T, T](reg, OperatorGt, func(a, b T) (any, error) { return a > b, nil })
	RegisterBinary[T, T](reg, OperatorGte, func(a, b T) (any, error) { return a >= b, nil })
	RegisterBinary[T, T](reg, OperatorLt, func(a, b T) (any, error) { return a < b, nil })
	RegisterBinary[T, T](reg, OperatorLte, func(a, b T) (any, error) { return a <= b, nil })
}

// NewDefaultRegistry creates a registry ordering the value kinds a document
// store holds: integers, floats, strings, booleans, timestamps and intervals.
func NewDefaultRegistry() *OperatorRegistry {
	reg := NewOperatorRegistry()

	// bool: false < true
	RegisterBinary[bool, bool](reg, OperatorEq, func(a, b bool) (any, error) { return a == b, nil })
	RegisterBinary[bool, bool](reg, OperatorNe, func(a, b bool) (any, error) { return a != b, nil })
	RegisterBinary[bool, bool](reg, OperatorLt, func(a, b bool) (any, error) { return !a && b, nil })
	RegisterBinary[bool, bool](reg, OperatorLte, func(a, b bool) (any, error) { return !a || b, nil })
	RegisterBinary[bool, bool](reg, OperatorGt, func(a, b bool) (any, error) { return a && !b, nil })
	RegisterBinary[bool, bool](reg, OperatorGte, func(a, b bool) (any, error) { return a || !b, nil })

	// int64 sums that overflow continue as float64
	registerComparison[int64](reg)
	RegisterBinary[int64, int64](reg, OperatorAdd, func(a, b int64) (any, error) {
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return float64(a) + float64(b), nil
		}
		return a + b, nil
	})

	registerComparison[float64](reg)
	RegisterBinary[float64, float64](reg, OperatorAdd, func(a, b float64) (any, error) { return a + b, nil })

	registerComparison[string](reg)

	// time.Duration (interval)
	registerComparison[time.Duration](reg)
	RegisterBinary[time.Duration, time.Duration](reg, OperatorAdd, func(a, b time.Duration) (any, error) { return a + b, nil })

	// time.Time (timestamp)
	RegisterBinary[time.Time, time.Time](reg, OperatorEq, func(a, b time.Time) (any, error) { return a.Equal(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorNe, func(a, b time.Time) (any, error) { return !a.Equal(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorGt, func(a, b time.Time) (any, error) { return a.After(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorGte, func(a, b time.Time) (any, error) { return !a.Before(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorLt, func(a, b time.Time) (any, error) { return a.Before(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorLte, func(a, b time.Time) (any, error) { return !a.After(b), nil })

	return reg
}
