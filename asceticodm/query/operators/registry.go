package operators

import (
	"math"
	"reflect"
)

type BinaryOp func(left, right any) (any, error)

type binaryKey struct {
	left  reflect.Type
	op    Operator
	right reflect.Type
}

type OperatorRegistry struct {
	binary map[binaryKey]BinaryOp
}

func NewOperatorRegistry() *OperatorRegistry {
	return &OperatorRegistry{
		binary: make(map[binaryKey]BinaryOp),
	}
}

func RegisterBinary[L, R any](reg *OperatorRegistry, op Operator, fn func(L, R) (any, error)) {
	var zeroL L
	var zeroR R
	key := binaryKey{
		left:  reflect.TypeOf(zeroL),
		op:    op,
		right: reflect.TypeOf(zeroR),
	}
	reg.binary[key] = func(left, right any) (any, error) {
		return fn(left.(L), right.(R))
	}
}

// ExecBinary executes a binary operator with NULL propagation: a nil operand
// yields a nil result.
func (r *OperatorRegistry) ExecBinary(left any, op Operator, right any) (any, error) {
	if left == nil || right == nil {
		return nil, nil
	}
	fn, l, rt, err := r.lookupBinary(left, op, right)
	if err != nil {
		return nil, err
	}
	return fn(l, rt)
}

// lookupBinary resolves the exact operand types first, then the Value Object
// interfaces, then the operands widened to their canonical kind (int64,
// float64, string, bool).
func (r *OperatorRegistry) lookupBinary(left any, op Operator, right any) (BinaryOp, any, any, error) {
	if fn, ok := r.binary[keyOf(left, op, right)]; ok {
		return fn, left, right, nil
	}
	if fallback := interfaceFallback(left, op, right); fallback != nil {
		return fallback, left, right, nil
	}
	l, rt := normalizePair(left, right)
	if fn, ok := r.binary[keyOf(l, op, rt)]; ok {
		return fn, l, rt, nil
	}
	return nil, nil, nil, &TypeMismatchError{Operator: op, Left: left, Right: right}
}

func keyOf(left any, op Operator, right any) binaryKey {
	return binaryKey{left: reflect.TypeOf(left), op: op, right: reflect.TypeOf(right)}
}

func interfaceFallback(left any, op Operator, right any) BinaryOp {
	mismatch := func() (any, error) {
		return nil, &TypeMismatchError{Operator: op, Left: left, Right: right}
	}
	switch op {
	case OperatorEq, OperatorNe:
		l, ok := left.(EqualOperand)
		if !ok {
			return nil
		}
		return func(_, right any) (any, error) {
			r, ok := right.(EqualOperand)
			if !ok {
				return mismatch()
			}
			return l.Equal(r) == (op == OperatorEq), nil
		}
	case OperatorGt:
		l, ok := left.(GreaterThanOperand)
		if !ok {
			return nil
		}
		return func(_, right any) (any, error) {
			r, ok := right.(GreaterThanOperand)
			if !ok {
				return mismatch()
			}
			return l.GreaterThan(r), nil
		}
	case OperatorGte:
		l, ok := left.(GreaterThanEqualOperand)
		if !ok {
			return nil
		}
		return func(_, right any) (any, error) {
			r, ok := right.(GreaterThanEqualOperand)
			if !ok {
				return mismatch()
			}
			return l.GreaterThanEqual(r), nil
		}
	case OperatorLt:
		l, ok := left.(LessThanOperand)
		if !ok {
			return nil
		}
		return func(_, right any) (any, error) {
			r, ok := right.(LessThanOperand)
			if !ok {
				return mismatch()
			}
			return l.LessThan(r), nil
		}
	case OperatorLte:
		l, ok := left.(LessThanEqualOperand)
		if !ok {
			return nil
		}
		return func(_, right any) (any, error) {
			r, ok := right.(LessThanEqualOperand)
			if !ok {
				return mismatch()
			}
			return l.LessThanEqual(r), nil
		}
	}
	return nil
}

// normalize widens a value of a basic kind to its canonical type. Values of
// other kinds are returned untouched.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u)
		}
		return float64(u)
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}

func normalizePair(left, right any) (any, any) {
	l, r := normalize(left), normalize(right)
	switch lv := l.(type) {
	case int64:
		if _, ok := r.(float64); ok {
			return float64(lv), r
		}
	case float64:
		if rv, ok := r.(int64); ok {
			return l, float64(rv)
		}
	}
	return l, r
}

// IsNumeric reports whether v is of an integer or floating point kind.
func IsNumeric(v any) bool {
	switch normalize(v).(type) {
	case int64, float64:
		return true
	}
	return false
}
