package query

import "strings"

// MapVisitor converts Expr to map[string]any with operators.
type MapVisitor struct{}

func (v MapVisitor) Visit(op Expr) (map[string]any, error) {
	result, err := op.Accept(v)
	if err != nil {
		return nil, err
	}
	return result.(map[string]any), nil
}

func (v MapVisitor) VisitEq(op Eq) (any, error) {
	return map[string]any{"$eq": op.Value}, nil
}

func (v MapVisitor) VisitCompare(op Compare) (any, error) {
	return map[string]any{op.Op: op.Value}, nil
}

func (v MapVisitor) VisitIn(op In) (any, error) {
	values := make([]any, len(op.Values))
	copy(values, op.Values)
	return map[string]any{"$in": values}, nil
}

func (v MapVisitor) VisitIsNull(op IsNull) (any, error) {
	return map[string]any{"$is_null": op.Value}, nil
}

// VisitAnd folds field-level operands into one operator map
// ({'$gt': 1, '$lt': 9}) and falls back to {'$and': [...]} otherwise.
func (v MapVisitor) VisitAnd(op And) (any, error) {
	items, err := acceptAll(v, op.Operands)
	if err != nil {
		return nil, err
	}
	return foldAnd(items), nil
}

func (v MapVisitor) VisitOr(op Or) (any, error) {
	items, err := acceptAll(v, op.Operands)
	if err != nil {
		return nil, err
	}
	return map[string]any{"$or": items}, nil
}

func (v MapVisitor) VisitSelector(op Selector) (any, error) {
	result := make(map[string]any, len(op.Fields))
	for k, fieldOp := range op.Fields {
		val, err := fieldOp.Accept(v)
		if err != nil {
			return nil, err
		}
		result[k] = val
	}
	return result, nil
}

// PlainValueVisitor converts Expr to plain values without
// $eq wrappers, i.e. back to the form a selector is written in.
type PlainValueVisitor struct{}

func (v PlainValueVisitor) Visit(op Expr) (any, error) {
	return op.Accept(v)
}

func (v PlainValueVisitor) VisitEq(op Eq) (any, error) {
	return op.Value, nil
}

func (v PlainValueVisitor) VisitCompare(op Compare) (any, error) {
	return map[string]any{op.Op: op.Value}, nil
}

func (v PlainValueVisitor) VisitIn(op In) (any, error) {
	values := make([]any, len(op.Values))
	copy(values, op.Values)
	return map[string]any{"$in": values}, nil
}

func (v PlainValueVisitor) VisitIsNull(op IsNull) (any, error) {
	return map[string]any{"$is_null": op.Value}, nil
}

func (v PlainValueVisitor) VisitAnd(op And) (any, error) {
	items, err := acceptAll(v, op.Operands)
	if err != nil {
		return nil, err
	}
	return foldAnd(items), nil
}

func (v PlainValueVisitor) VisitOr(op Or) (any, error) {
	items, err := acceptAll(v, op.Operands)
	if err != nil {
		return nil, err
	}
	return map[string]any{"$or": items}, nil
}

func (v PlainValueVisitor) VisitSelector(op Selector) (any, error) {
	result := make(map[string]any, len(op.Fields))
	for k, fieldOp := range op.Fields {
		val, err := fieldOp.Accept(v)
		if err != nil {
			return nil, err
		}
		result[k] = val
	}
	return result, nil
}

func acceptAll(v Visitor, operands []Expr) ([]any, error) {
	items := make([]any, len(operands))
	for i, operand := range operands {
		item, err := operand.Accept(v)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func foldAnd(items []any) any {
	result := make(map[string]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return map[string]any{"$and": items}
		}
		for k, val := range m {
			if _, dup := result[k]; dup || !strings.HasPrefix(k, operatorPrefix) {
				return map[string]any{"$and": items}
			}
			result[k] = val
		}
	}
	return result
}

var (
	mapVisitor        = MapVisitor{}
	plainValueVisitor = PlainValueVisitor{}
)

// ToMap converts Expr to map[string]any with operators.
func ToMap(op Expr) (map[string]any, error) {
	return mapVisitor.Visit(op)
}

// PlainValue converts Expr to plain value without operators.
func PlainValue(op Expr) (any, error) {
	return plainValueVisitor.Visit(op)
}
