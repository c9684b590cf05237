package query

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

const operatorPrefix = "$"

type operatorParser func(value any) (Expr, error)

var operatorParsers map[string]operatorParser

func init() {
	operatorParsers = map[string]operatorParser{
		"$eq":      parseEq,
		"$ne":      comparison("$ne"),
		"$gt":      comparison("$gt"),
		"$gte":     comparison("$gte"),
		"$lt":      comparison("$lt"),
		"$lte":     comparison("$lte"),
		"$in":      parseIn,
		"$nin":     parseNin,
		"$is_null": parseIsNull,
		"$exists":  parseExists,
		"$and":     parseAnd,
		"$or":      parseOr,
	}
}

// Parse turns a selector written as nested maps into an Expr tree. A map
// holds either field names or $-operators, never both; any other value is an
// equality test.
func Parse(selector any) (Expr, error) {
	expr, err := parse(selector)
	if err != nil {
		return nil, err
	}
	return Normalize(expr), nil
}

// ParseSelector parses a field map. Unlike Parse, an empty or nil map is
// valid and matches every document.
func ParseSelector(selector map[string]any) (Expr, error) {
	if len(selector) == 0 {
		return Selector{Fields: map[string]Expr{}}, nil
	}
	return Parse(selector)
}

func parse(value any) (Expr, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return Eq{Value: value}, nil
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	ops, fields := splitKeys(m)
	switch {
	case len(ops) > 0 && len(fields) > 0:
		return nil, fmt.Errorf("selector mixes operators %v with fields %v", ops, fields)
	case len(ops) > 0:
		return parseOperators(m, ops)
	}
	parsed := make(map[string]Expr, len(fields))
	for _, field := range fields {
		expr, err := parseCondition(m[field])
		if err != nil {
			return nil, err
		}
		parsed[field] = expr
	}
	return Selector{Fields: parsed}, nil
}

// parseCondition reads the value given for one field. A map of $-operators
// is a condition; a map of plain keys is a sub-document compared as a whole,
// so {"address": {"city": "Berlin"}} does not match an address that also
// has a zip. Use "address.city" to test a single nested field.
func parseCondition(value any) (Expr, error) {
	m, ok := value.(map[string]any)
	if !ok || len(m) == 0 {
		return Eq{Value: value}, nil
	}
	ops, fields := splitKeys(m)
	switch {
	case len(ops) > 0 && len(fields) > 0:
		return nil, fmt.Errorf("selector mixes operators %v with fields %v", ops, fields)
	case len(ops) > 0:
		return parseOperators(m, ops)
	}
	return Eq{Value: m}, nil
}

func splitKeys(m map[string]any) (ops, fields []string) {
	for _, key := range sortedKeys(m) {
		if strings.HasPrefix(key, operatorPrefix) {
			ops = append(ops, key)
		} else {
			fields = append(fields, key)
		}
	}
	return ops, fields
}

// parseOperators ANDs several operators given for one field.
func parseOperators(m map[string]any, ops []string) (Expr, error) {
	parsed := make([]Expr, len(ops))
	for i, op := range ops {
		p, known := operatorParsers[op]
		if !known {
			return nil, fmt.Errorf("unknown operator: %s", op)
		}
		expr, err := p(m[op])
		if err != nil {
			return nil, err
		}
		parsed[i] = expr
	}
	if len(parsed) == 1 {
		return parsed[0], nil
	}
	return And{Operands: parsed}, nil
}

func comparison(op string) operatorParser {
	return func(value any) (Expr, error) {
		return Compare{Op: op, Value: value}, nil
	}
}

// parseEq takes its operand literally, maps included.
func parseEq(value any) (Expr, error) {
	return Eq{Value: value}, nil
}

func parseIn(value any) (Expr, error) {
	values, err := listOperand("$in", value, 1)
	if err != nil {
		return nil, err
	}
	return In{Values: values}, nil
}

// parseNin expresses {$nin: [a, b]} as {$ne: a} AND {$ne: b}; a missing
// field passes, as in MongoDB.
func parseNin(value any) (Expr, error) {
	values, err := listOperand("$nin", value, 1)
	if err != nil {
		return nil, err
	}
	if len(values) == 1 {
		return Compare{Op: "$ne", Value: values[0]}, nil
	}
	operands := make([]Expr, len(values))
	for i, v := range values {
		operands[i] = Compare{Op: "$ne", Value: v}
	}
	return And{Operands: operands}, nil
}

func parseIsNull(value any) (Expr, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("$is_null expects a bool, got %T", value)
	}
	return IsNull{Value: b}, nil
}

// parseExists reads {$exists: true} as "not null". A stored nil and a
// missing field are the same to the matcher.
func parseExists(value any) (Expr, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("$exists expects a bool, got %T", value)
	}
	return IsNull{Value: !b}, nil
}

func parseAnd(value any) (Expr, error) {
	operands, err := exprList("$and", value, 1)
	if err != nil {
		return nil, err
	}
	return And{Operands: operands}, nil
}

func parseOr(value any) (Expr, error) {
	operands, err := exprList("$or", value, 2)
	if err != nil {
		return nil, err
	}
	return Or{Operands: operands}, nil
}

func exprList(op string, value any, minLen int) ([]Expr, error) {
	items, err := listOperand(op, value, minLen)
	if err != nil {
		return nil, err
	}
	exprs := make([]Expr, len(items))
	for i, item := range items {
		if exprs[i], err = parse(item); err != nil {
			return nil, err
		}
	}
	return exprs, nil
}

// listOperand copies any slice or array, so typed literals such as
// []int{1, 2} are accepted.
func listOperand(op string, value any, minLen int) ([]any, error) {
	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%s expects a list, got %T", op, value)
	}
	if rv.Len() < minLen {
		return nil, fmt.Errorf("%s needs at least %d operands, got %d", op, minLen, rv.Len())
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize drops Eq wrappers around a nested Expr at the top of a tree or
// of an And, Or or Selector branch.
func Normalize(expr Expr) Expr {
	switch e := expr.(type) {
	case Eq:
		if inner, ok := e.Value.(Expr); ok {
			return Normalize(inner)
		}
		return e
	case And:
		return And{Operands: normalizeAll(e.Operands)}
	case Or:
		return Or{Operands: normalizeAll(e.Operands)}
	case Selector:
		fields := make(map[string]Expr, len(e.Fields))
		for field, cond := range e.Fields {
			fields[field] = Normalize(cond)
		}
		return Selector{Fields: fields}
	}
	return expr
}

func normalizeAll(exprs []Expr) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Normalize(e)
	}
	return out
}
