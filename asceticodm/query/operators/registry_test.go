package operators

import (
	"errors"
	"math"
	"testing"
	"time"
)

type Money struct {
	amount   int
	currency string
}

func (m Money) Equal(other EqualOperand) bool {
	o, ok := other.(Money)
	if !ok {
		return false
	}
	return m.amount == o.amount && m.currency == o.currency
}

func (m Money) GreaterThan(other GreaterThanOperand) bool {
	o, ok := other.(Money)
	if !ok {
		return false
	}
	return m.amount > o.amount
}

func (m Money) LessThan(other LessThanOperand) bool {
	o, ok := other.(Money)
	if !ok {
		return false
	}
	return m.amount < o.amount
}

type PostCode int

func TestInterfaceFallback_Equal(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.ExecBinary(Money{100, "USD"}, OperatorEq, Money{100, "USD"})
	if err != nil {
		t.Fatalf("ExecBinary failed: %v", err)
	}
	if result != true {
		t.Errorf("Expected true, got %v", result)
	}

	result, err = reg.ExecBinary(Money{100, "USD"}, OperatorNe, Money{100, "EUR"})
	if err != nil {
		t.Fatalf("ExecBinary failed: %v", err)
	}
	if result != true {
		t.Errorf("Expected true, got %v", result)
	}
}

func TestInterfaceFallback_Comparison(t *testing.T) {
	reg := NewDefaultRegistry()

	tests := []struct {
		name     string
		left     Money
		op       Operator
		right    Money
		expected bool
	}{
		{"100 > 50", Money{100, "USD"}, OperatorGt, Money{50, "USD"}, true},
		{"50 > 100", Money{50, "USD"}, OperatorGt, Money{100, "USD"}, false},
		{"50 < 100", Money{50, "USD"}, OperatorLt, Money{100, "USD"}, true},
		{"100 < 50", Money{100, "USD"}, OperatorLt, Money{50, "USD"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reg.ExecBinary(tt.left, tt.op, tt.right)
			if err != nil {
				t.Fatalf("ExecBinary failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestInterfaceFallback_MissingInterface(t *testing.T) {
	reg := NewDefaultRegistry()

	_, err := reg.ExecBinary(Money{100, "USD"}, OperatorGte, Money{50, "USD"})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
}

func TestExecBinary_NullPropagation(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.ExecBinary(nil, OperatorEq, Money{100, "USD"})
	if err != nil {
		t.Fatalf("ExecBinary failed: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil (NULL), got %v", result)
	}

	result, err = reg.ExecBinary(10, OperatorGt, nil)
	if err != nil {
		t.Fatalf("ExecBinary failed: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil (NULL), got %v", result)
	}
}

func TestExecBinary_NumericWidening(t *testing.T) {
	reg := NewDefaultRegistry()

	tests := []struct {
		name     string
		left     any
		op       Operator
		right    any
		expected bool
	}{
		{"int = int64", 20, OperatorEq, int64(20), true},
		{"int32 < float64", int32(1), OperatorLt, 1.5, true},
		{"uint8 > int", uint8(7), OperatorGt, 3, true},
		{"named int = int", PostCode(32250), OperatorEq, 32250, true},
		{"float32 <= float64", float32(2), OperatorLte, 2.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reg.ExecBinary(tt.left, tt.op, tt.right)
			if err != nil {
				t.Fatalf("ExecBinary failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestExecBinary_TypeMismatch(t *testing.T) {
	reg := NewDefaultRegistry()

	_, err := reg.ExecBinary("Bond Street", OperatorLt, 10)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Expected ErrTypeMismatch, got %v", err)
	}
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected *TypeMismatchError, got %T", err)
	}
	if mismatch.Operator != OperatorLt {
		t.Errorf("Expected operator <, got %s", mismatch.Operator)
	}
	if mismatch.Error() != `operator "<" is not supported for string and int` {
		t.Errorf("Unexpected message: %s", mismatch.Error())
	}
}

func TestCompare(t *testing.T) {
	reg := NewDefaultRegistry()
	now := time.Now()

	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"ints", 1, 10, -1},
		{"mixed numerics", 20.0, 20, 0},
		{"strings", "Broadway", "Bond Street", 1},
		{"times", now, now.Add(time.Second), -1},
		{"durations", time.Minute, time.Second, 1},
		{"bools", false, true, -1},
		{"nil first", nil, 0, -1},
		{"nil last", "a", nil, 1},
		{"both nil", nil, nil, 0},
		{"value objects", Money{5, "USD"}, Money{5, "EUR"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reg.Compare(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, result)
			}
		})
	}

	if _, err := reg.Compare(now, "yesterday"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
}

func TestEqual(t *testing.T) {
	reg := NewDefaultRegistry()
	now := time.Now()

	if !reg.Equal(nil, nil) {
		t.Error("nil should equal nil")
	}
	if reg.Equal(nil, 0) {
		t.Error("nil should not equal 0")
	}
	if !reg.Equal(1, 1.0) {
		t.Error("1 should equal 1.0")
	}
	if !reg.Equal(now, now.UTC()) {
		t.Error("same instant should be equal across locations")
	}
	if reg.Equal("1", 1) {
		t.Error("string should not equal int")
	}
	if !reg.Equal([]any{"a", 1}, []any{"a", 1}) {
		t.Error("slices should fall back to deep equality")
	}
}

func TestAdd(t *testing.T) {
	reg := NewDefaultRegistry()

	result, err := reg.Add(1, int64(10))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if result != int64(11) {
		t.Errorf("Expected int64(11), got %#v", result)
	}

	result, err = reg.Add(1, 0.5)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if result != 1.5 {
		t.Errorf("Expected 1.5, got %#v", result)
	}

	result, err = reg.Add(int64(math.MaxInt64), 1)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, ok := result.(float64); !ok {
		t.Errorf("Expected overflow to promote to float64, got %#v", result)
	}

	if _, err := reg.Add("10", 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
	if _, err := reg.Add(true, 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch for bool, got %v", err)
	}
}
