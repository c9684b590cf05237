package query

import (
	"reflect"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
)

// Matcher evaluates a selector tree against documents. The zero value is not
// usable; construct it with NewMatcher.
type Matcher struct {
	registry *operators.OperatorRegistry
}

func NewMatcher(registry *operators.OperatorRegistry) *Matcher {
	if registry == nil {
		registry = operators.NewDefaultRegistry()
	}
	return &Matcher{registry: registry}
}

func (m *Matcher) Registry() *operators.OperatorRegistry {
	return m.registry
}

// Matches reports whether doc satisfies every field condition of selector.
// An empty selector matches any document.
func (m *Matcher) Matches(doc document.Document, selector Expr) (bool, error) {
	if IsEmpty(selector) {
		return true, nil
	}
	return m.evaluate(selector, doc)
}

func (m *Matcher) evaluate(op Expr, state any) (bool, error) {
	switch o := op.(type) {
	case Eq:
		if inner, ok := o.Value.(Expr); ok {
			return m.evaluate(inner, state)
		}
		return m.registry.Equal(state, o.Value), nil

	case Compare:
		return m.compare(o, state)

	case In:
		for _, v := range o.Values {
			if m.registry.Equal(state, v) {
				return true, nil
			}
		}
		return false, nil

	case IsNull:
		return (state == nil) == o.Value, nil

	case And:
		for _, operand := range o.Operands {
			ok, err := m.evaluate(operand, state)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case Or:
		for _, operand := range o.Operands {
			ok, err := m.evaluate(operand, state)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case Selector:
		doc, ok := asDocument(state)
		if !ok {
			return false, nil
		}
		for _, field := range o.FieldNames() {
			ok, err := m.evaluate(o.Fields[field], document.Value(doc, field))
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	default:
		return false, nil
	}
}

func (m *Matcher) compare(op Compare, state any) (bool, error) {
	if op.Op == "$ne" {
		return !m.registry.Equal(state, op.Value), nil
	}
	if state == nil || op.Value == nil {
		return false, nil
	}
	var opr operators.Operator
	switch op.Op {
	case "$gt":
		opr = operators.OperatorGt
	case "$gte":
		opr = operators.OperatorGte
	case "$lt":
		opr = operators.OperatorLt
	case "$lte":
		opr = operators.OperatorLte
	default:
		return false, nil
	}
	result, err := m.registry.ExecBinary(state, opr, op.Value)
	if err != nil {
		return false, err
	}
	b, _ := result.(bool)
	return b, nil
}

func asDocument(state any) (document.Document, bool) {
	switch s := state.(type) {
	case document.Document:
		return s, true
	case map[string]any:
		return document.New(s), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(state)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	return document.FromStruct(state), true
}
