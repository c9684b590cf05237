package operators

import (
	"reflect"
)

// Compare returns -1, 0 or 1 ordering a against b by the natural order of
// their type. nil sorts before any non-nil value. Only the "<" operator is
// required, so a Value Object needs to implement LessThanOperand alone.
func (r *OperatorRegistry) Compare(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	less, err := r.execBool(a, OperatorLt, b)
	if err != nil {
		return 0, err
	}
	if less {
		return -1, nil
	}
	greater, err := r.execBool(b, OperatorLt, a)
	if err != nil {
		return 0, err
	}
	if greater {
		return 1, nil
	}
	return 0, nil
}

// Equal reports value equality. Numbers compare by value across Go numeric
// types, timestamps by instant; anything the registry cannot compare falls
// back to reflect.DeepEqual.
func (r *OperatorRegistry) Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	eq, err := r.execBool(a, OperatorEq, b)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	return eq
}

// Add sums two numeric values, returning int64 or float64.
func (r *OperatorRegistry) Add(a, b any) (any, error) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, &TypeMismatchError{Operator: OperatorAdd, Left: a, Right: b}
	}
	l, rt := normalizePair(a, b)
	return r.ExecBinary(l, OperatorAdd, rt)
}

func (r *OperatorRegistry) execBool(a any, op Operator, b any) (bool, error) {
	result, err := r.ExecBinary(a, op, b)
	if err != nil {
		return false, err
	}
	v, ok := result.(bool)
	if !ok {
		return false, &TypeMismatchError{Operator: op, Left: a, Right: b}
	}
	return v, nil
}
