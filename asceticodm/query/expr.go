package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrUnsupportedMerge is returned when two conditions of different kinds
// meet on one field and cannot be combined.
var ErrUnsupportedMerge = errors.New("unsupported merge between different operator types")

// MergeConflict reports two conditions of the same kind that no document
// could satisfy at once, such as {a: 1} merged with {a: 2}.
type MergeConflict struct {
	ExistingValue any
	NewValue      any
}

func (e *MergeConflict) Error() string {
	return fmt.Sprintf("cannot merge %v with %v", e.ExistingValue, e.NewValue)
}

type Visitor interface {
	VisitEq(Eq) (any, error)
	VisitCompare(Compare) (any, error)
	VisitIn(In) (any, error)
	VisitIsNull(IsNull) (any, error)
	VisitAnd(And) (any, error)
	VisitOr(Or) (any, error)
	VisitSelector(Selector) (any, error)
}

// Expr is a node of a selector. Eq, Compare, In and IsNull test a single
// field value; And and Or combine nodes; Selector maps field names to nodes.
// Nodes are values and never change after construction.
type Expr interface {
	Accept(Visitor) (any, error)
	Equal(Expr) bool
	Merge(Expr) (Expr, error)
}

// Eq matches a value equal to Value. A nested Expr as Value matches an
// embedded document.
type Eq struct {
	Value any
}

// Compare is one of $ne, $gt, $gte, $lt and $lte against Value.
type Compare struct {
	Op    string
	Value any
}

// In matches a value equal to any of Values.
type In struct {
	Values []any
}

// IsNull matches a nil or missing value when Value is true, and a present
// one otherwise.
type IsNull struct {
	Value bool
}

type And struct {
	Operands []Expr
}

type Or struct {
	Operands []Expr
}

// Selector holds one condition per field; all of them must hold.
type Selector struct {
	Fields map[string]Expr
}

func (o Eq) Accept(v Visitor) (any, error)       { return v.VisitEq(o) }
func (o Compare) Accept(v Visitor) (any, error)  { return v.VisitCompare(o) }
func (o In) Accept(v Visitor) (any, error)       { return v.VisitIn(o) }
func (o IsNull) Accept(v Visitor) (any, error)   { return v.VisitIsNull(o) }
func (o And) Accept(v Visitor) (any, error)      { return v.VisitAnd(o) }
func (o Or) Accept(v Visitor) (any, error)       { return v.VisitOr(o) }
func (o Selector) Accept(v Visitor) (any, error) { return v.VisitSelector(o) }

func (o Eq) Equal(other Expr) bool {
	oo, ok := other.(Eq)
	return ok && reflect.DeepEqual(o.Value, oo.Value)
}

func (o Compare) Equal(other Expr) bool {
	oo, ok := other.(Compare)
	return ok && o.Op == oo.Op && reflect.DeepEqual(o.Value, oo.Value)
}

func (o In) Equal(other Expr) bool {
	oo, ok := other.(In)
	return ok && reflect.DeepEqual(o.Values, oo.Values)
}

func (o IsNull) Equal(other Expr) bool {
	oo, ok := other.(IsNull)
	return ok && o.Value == oo.Value
}

func (o And) Equal(other Expr) bool {
	oo, ok := other.(And)
	return ok && exprsEqual(o.Operands, oo.Operands)
}

func (o Or) Equal(other Expr) bool {
	oo, ok := other.(Or)
	return ok && exprsEqual(o.Operands, oo.Operands)
}

func (o Selector) Equal(other Expr) bool {
	oo, ok := other.(Selector)
	if !ok || len(o.Fields) != len(oo.Fields) {
		return false
	}
	for field, cond := range o.Fields {
		if ocond, exists := oo.Fields[field]; !exists || !cond.Equal(ocond) {
			return false
		}
	}
	return true
}

func exprsEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// mergeSame accepts an identical node and rejects everything else: a
// conflict for the same kind, ErrUnsupportedMerge across kinds.
func mergeSame[T Expr](o T, other Expr, existing, incoming func(T) any) (Expr, error) {
	oo, ok := other.(T)
	if !ok {
		return nil, ErrUnsupportedMerge
	}
	if o.Equal(oo) {
		return o, nil
	}
	return nil, &MergeConflict{ExistingValue: existing(o), NewValue: incoming(oo)}
}

func (o Eq) Merge(other Expr) (Expr, error) {
	value := func(e Eq) any { return e.Value }
	return mergeSame(o, other, value, value)
}

func (o In) Merge(other Expr) (Expr, error) {
	values := func(e In) any { return e.Values }
	return mergeSame(o, other, values, values)
}

func (o IsNull) Merge(other Expr) (Expr, error) {
	value := func(e IsNull) any { return e.Value }
	return mergeSame(o, other, value, value)
}

func (o Or) Merge(other Expr) (Expr, error) {
	operands := func(e Or) any { return e.Operands }
	return mergeSame(o, other, operands, operands)
}

// Merge keeps both bounds, so {$gt: 1} and {$lt: 9} narrow the field to a
// range.
func (o Compare) Merge(other Expr) (Expr, error) {
	oo, ok := other.(Compare)
	if !ok {
		return nil, ErrUnsupportedMerge
	}
	if o.Equal(oo) {
		return o, nil
	}
	return And{Operands: []Expr{o, oo}}, nil
}

// Merge appends other, flattening a nested And.
func (o And) Merge(other Expr) (Expr, error) {
	if o.Equal(other) {
		return o, nil
	}
	operands := append([]Expr(nil), o.Operands...)
	if oo, ok := other.(And); ok {
		operands = append(operands, oo.Operands...)
	} else {
		operands = append(operands, other)
	}
	return And{Operands: operands}, nil
}

// Merge combines two selectors field by field. Neither operand is modified.
func (o Selector) Merge(other Expr) (Expr, error) {
	oo, ok := other.(Selector)
	if !ok {
		return nil, ErrUnsupportedMerge
	}
	fields := make(map[string]Expr, len(o.Fields)+len(oo.Fields))
	for field, cond := range o.Fields {
		fields[field] = cond
	}
	for _, field := range oo.FieldNames() {
		cond := oo.Fields[field]
		if existing, exists := fields[field]; exists {
			merged, err := existing.Merge(cond)
			if err != nil {
				return nil, err
			}
			cond = merged
		}
		fields[field] = cond
	}
	return Selector{Fields: fields}, nil
}

// FieldNames returns the fields in sorted order. Evaluation and compiled
// SQL walk fields in this order.
func (o Selector) FieldNames() []string {
	names := make([]string, 0, len(o.Fields))
	for name := range o.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o Eq) String() string       { return fmt.Sprintf("Eq(%v)", o.Value) }
func (o Compare) String() string  { return fmt.Sprintf("Compare(%s, %v)", o.Op, o.Value) }
func (o In) String() string       { return fmt.Sprintf("In(%v)", o.Values) }
func (o IsNull) String() string   { return fmt.Sprintf("IsNull(%v)", o.Value) }
func (o And) String() string      { return fmt.Sprintf("And(%v)", o.Operands) }
func (o Or) String() string       { return fmt.Sprintf("Or(%v)", o.Operands) }
func (o Selector) String() string { return fmt.Sprintf("Selector(%v)", o.Fields) }

// IsEmpty reports whether selector matches every document.
func IsEmpty(selector Expr) bool {
	if selector == nil {
		return true
	}
	s, ok := selector.(Selector)
	return ok && len(s.Fields) == 0
}
