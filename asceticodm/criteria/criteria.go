// Package criteria describes a query over a document set: a selector, sort
// and pagination options, an optional field projection and the candidate
// documents themselves.
package criteria

import (
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query"
)

// Criteria is immutable from the caller's point of view: builder methods
// return a modified copy. The document slice is shared, never copied.
type Criteria struct {
	selector  query.Expr
	options   Options
	fields    []string
	documents []document.Document
}

func New(documents []document.Document) *Criteria {
	return &Criteria{
		selector:  emptySelector(),
		documents: documents,
	}
}

func emptySelector() query.Expr {
	return query.Selector{Fields: map[string]query.Expr{}}
}

func (c *Criteria) clone() *Criteria {
	cp := *c
	cp.options.Sort = append(Sort(nil), c.options.Sort...)
	cp.fields = append([]string(nil), c.fields...)
	return &cp
}

// Where narrows the selector. A field already constrained keeps both
// conditions when they can be combined and takes the new one otherwise.
func (c *Criteria) Where(selector map[string]any) (*Criteria, error) {
	parsed, err := query.ParseSelector(selector)
	if err != nil {
		return nil, errors.Wrap(err, "criteria: invalid selector")
	}
	return c.WhereExpr(parsed), nil
}

// MustWhere is like Where but panics on an invalid selector.
func (c *Criteria) MustWhere(selector map[string]any) *Criteria {
	cp, err := c.Where(selector)
	if err != nil {
		panic(err)
	}
	return cp
}

func (c *Criteria) WhereExpr(selector query.Expr) *Criteria {
	cp := c.clone()
	cp.selector = mergeSelectors(c.selector, selector)
	return cp
}

func mergeSelectors(current, next query.Expr) query.Expr {
	if query.IsEmpty(current) {
		return next
	}
	if query.IsEmpty(next) {
		return current
	}
	cur, ok1 := current.(query.Selector)
	nxt, ok2 := next.(query.Selector)
	if !ok1 || !ok2 {
		return query.And{Operands: []query.Expr{current, next}}
	}
	fields := make(map[string]query.Expr, len(cur.Fields)+len(nxt.Fields))
	for k, v := range cur.Fields {
		fields[k] = v
	}
	for _, k := range nxt.FieldNames() {
		op := nxt.Fields[k]
		if existing, exists := fields[k]; exists {
			if merged, err := existing.Merge(op); err == nil {
				fields[k] = merged
				continue
			}
		}
		fields[k] = op
	}
	return query.Selector{Fields: fields}
}

func (c *Criteria) OrderBy(keys ...SortKey) *Criteria {
	cp := c.clone()
	cp.options.Sort = append(cp.options.Sort, keys...)
	return cp
}

func (c *Criteria) Skip(n int) *Criteria {
	cp := c.clone()
	cp.options.Skip = option.Some(n)
	return cp
}

func (c *Criteria) Limit(n int) *Criteria {
	cp := c.clone()
	cp.options.Limit = option.Some(n)
	return cp
}

// Only sets the projection used as the grouping key by Group and Aggregate.
func (c *Criteria) Only(fields ...string) *Criteria {
	cp := c.clone()
	cp.fields = append([]string(nil), fields...)
	return cp
}

// WithSelector replaces the selector instead of merging into it.
func (c *Criteria) WithSelector(selector query.Expr) *Criteria {
	cp := c.clone()
	if selector == nil {
		selector = emptySelector()
	}
	cp.selector = selector
	return cp
}

func (c *Criteria) WithOptions(opts Options) *Criteria {
	cp := c.clone()
	cp.options = opts
	return cp
}

func (c *Criteria) WithDocuments(documents []document.Document) *Criteria {
	cp := c.clone()
	cp.documents = documents
	return cp
}

func (c *Criteria) Selector() query.Expr {
	return c.selector
}

// SelectorMap renders the selector in the plain form it was written in.
func (c *Criteria) SelectorMap() (map[string]any, error) {
	if query.IsEmpty(c.selector) {
		return map[string]any{}, nil
	}
	plain, err := query.PlainValue(c.selector)
	if err != nil {
		return nil, err
	}
	m, ok := plain.(map[string]any)
	if !ok {
		return nil, errors.Errorf("criteria: selector renders as %T", plain)
	}
	return m, nil
}

func (c *Criteria) Options() Options {
	return c.options
}

func (c *Criteria) Fields() []string {
	return c.fields
}

func (c *Criteria) Documents() []document.Document {
	return c.documents
}
