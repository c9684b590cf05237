package pg

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query"
)

// Jsonb is a query parameter sent as a jsonb literal.
type Jsonb struct {
	Obj any
}

func (j Jsonb) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Obj)
}

func (j Jsonb) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Obj)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

var sqlOps = map[string]string{
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

// QueryCompiler compiles a selector to a WHERE condition over a jsonb column.
// Scalar equalities collapse into one containment test (value @> $1).
// Comparisons and sub-document equalities address the field through ->.
type QueryCompiler struct {
	targetValueExpr string
	fieldPath       []string
	eqValues        map[string]any
	sqlParts        []string
	params          []any
}

func NewQueryCompiler(targetValueExpr string) *QueryCompiler {
	if targetValueExpr == "" {
		targetValueExpr = "value"
	}
	return &QueryCompiler{
		targetValueExpr: targetValueExpr,
		eqValues:        map[string]any{},
	}
}

// Compile returns the condition with $n placeholders. An empty selector
// compiles to an empty string.
func (c *QueryCompiler) Compile(selector query.Expr) (string, []any, error) {
	sql, params, err := c.compile(selector)
	if err != nil {
		return "", nil, err
	}
	return Rebind(sql, 1), params, nil
}

// compile returns the condition with ? placeholders.
func (c *QueryCompiler) compile(selector query.Expr) (string, []any, error) {
	c.fieldPath = nil
	c.eqValues = map[string]any{}
	c.sqlParts = nil
	c.params = nil
	if query.IsEmpty(selector) {
		return "", nil, nil
	}
	if _, err := selector.Accept(c); err != nil {
		return "", nil, err
	}
	c.flushEq()
	return c.sql(), c.params, nil
}

func (c *QueryCompiler) sql() string {
	return strings.Join(c.sqlParts, " AND ")
}

func (c *QueryCompiler) VisitEq(op query.Eq) (any, error) {
	if _, ok := op.Value.(map[string]any); ok && len(c.fieldPath) > 0 {
		// Containment would accept a superset of the sub-document.
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("%s = ?", c.jsonPathExpr()))
		c.params = append(c.params, Jsonb{op.Value})
	} else if len(c.fieldPath) > 0 {
		c.collectEq(op.Value)
	} else {
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("%s @> ?", c.targetValueExpr))
		c.params = append(c.params, Jsonb{op.Value})
	}
	return nil, nil
}

func (c *QueryCompiler) VisitCompare(op query.Compare) (any, error) {
	if _, ok := op.Value.(map[string]any); ok && op.Op == "$ne" && len(c.fieldPath) > 0 {
		path := c.jsonPathExpr()
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("(%s IS NULL OR %s <> ?)", path, path))
		c.params = append(c.params, Jsonb{op.Value})
		return nil, nil
	}
	if op.Op == "$ne" {
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("NOT (%s @> ?)", c.targetValueExpr))
		c.params = append(c.params, Jsonb{c.nested(op.Value)})
		return nil, nil
	}
	sqlOp, ok := sqlOps[op.Op]
	if !ok {
		return nil, fmt.Errorf("unsupported comparison operator: %s", op.Op)
	}
	c.sqlParts = append(c.sqlParts, fmt.Sprintf("%s %s ?", c.jsonPathExpr(), sqlOp))
	c.params = append(c.params, Jsonb{op.Value})
	return nil, nil
}

func (c *QueryCompiler) VisitIn(op query.In) (any, error) {
	orParts := make([]string, 0, len(op.Values))
	for _, value := range op.Values {
		orParts = append(orParts, fmt.Sprintf("%s @> ?", c.targetValueExpr))
		c.params = append(c.params, Jsonb{c.nested(value)})
	}
	if len(orParts) == 1 {
		c.sqlParts = append(c.sqlParts, orParts[0])
	} else {
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("(%s)", strings.Join(orParts, " OR ")))
	}
	return nil, nil
}

// VisitIsNull treats a missing key and a json null alike.
func (c *QueryCompiler) VisitIsNull(op query.IsNull) (any, error) {
	path := c.targetValueExpr
	if len(c.fieldPath) > 0 {
		path = c.jsonPathExpr()
	}
	if op.Value {
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("(%s IS NULL OR %s = 'null'::jsonb)", path, path))
	} else {
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("(%s IS NOT NULL AND %s <> 'null'::jsonb)", path, path))
	}
	return nil, nil
}

func (c *QueryCompiler) VisitAnd(op query.And) (any, error) {
	for _, operand := range op.Operands {
		if _, err := operand.Accept(c); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (c *QueryCompiler) VisitOr(op query.Or) (any, error) {
	var orParts []string
	for _, operand := range op.Operands {
		sub := NewQueryCompiler(c.targetValueExpr)
		sub.fieldPath = append([]string(nil), c.fieldPath...)
		if _, err := operand.Accept(sub); err != nil {
			return nil, err
		}
		sub.flushEq()
		if subSql := sub.sql(); subSql != "" {
			orParts = append(orParts, subSql)
			c.params = append(c.params, sub.params...)
		}
	}
	if len(orParts) > 0 {
		c.sqlParts = append(c.sqlParts, fmt.Sprintf("(%s)", strings.Join(orParts, " OR ")))
	}
	return nil, nil
}

func (c *QueryCompiler) VisitSelector(op query.Selector) (any, error) {
	for _, field := range op.FieldNames() {
		c.fieldPath = append(c.fieldPath, strings.Split(field, ".")...)
		if _, err := op.Fields[field].Accept(c); err != nil {
			return nil, err
		}
		c.fieldPath = c.fieldPath[:len(c.fieldPath)-strings.Count(field, ".")-1]
	}
	return nil, nil
}

func (c *QueryCompiler) collectEq(value any) {
	target := c.eqValues
	for _, key := range c.fieldPath[:len(c.fieldPath)-1] {
		next, ok := target[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			target[key] = next
		}
		target = next
	}
	target[c.fieldPath[len(c.fieldPath)-1]] = value
}

func (c *QueryCompiler) flushEq() {
	if len(c.eqValues) > 0 {
		c.sqlParts = append([]string{fmt.Sprintf("%s @> ?", c.targetValueExpr)}, c.sqlParts...)
		c.params = append([]any{Jsonb{c.eqValues}}, c.params...)
	}
}

func (c *QueryCompiler) jsonPathExpr() string {
	expr := c.targetValueExpr
	for _, key := range c.fieldPath {
		expr += fmt.Sprintf("->%s", quoteLiteral(key))
	}
	return expr
}

// nested wraps value in the current field path: {a: {b: value}}.
func (c *QueryCompiler) nested(value any) any {
	for i := len(c.fieldPath) - 1; i >= 0; i-- {
		value = map[string]any{c.fieldPath[i]: value}
	}
	return value
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Rebind numbers ? placeholders as $start, $start+1, ...
func Rebind(sql string, start int) string {
	var b strings.Builder
	idx := start
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' {
			fmt.Fprintf(&b, "$%d", idx)
			idx++
		} else {
			b.WriteByte(sql[i])
		}
	}
	return b.String()
}
