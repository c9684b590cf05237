package enumerable

import (
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
)

// Aggregations work on the whole filtered and sorted set. Skip, limit and the
// shift cursor do not apply to them.

func (c *Context) Count() (int, error) {
	start := time.Now()
	working, err := c.workingSet()
	c.observe(OperationCount, start, len(working), len(working), err)
	if err != nil {
		return 0, err
	}
	return len(working), nil
}

// Sum adds up field over the working set. Missing and nil values count as
// zero. Integers accumulate as int64 and switch to float64 on overflow or on
// the first float; an empty set sums to int64(0).
func (c *Context) Sum(field string) (any, error) {
	start := time.Now()
	working, err := c.workingSet()
	var total any
	if err == nil {
		total, err = c.sum(working, field)
	}
	c.observe(OperationSum, start, len(working), 1, err)
	return total, err
}

func (c *Context) sum(docs []document.Document, field string) (any, error) {
	var total any = int64(0)
	for _, doc := range docs {
		v := document.Value(doc, field)
		if v == nil {
			continue
		}
		next, err := c.registry.Add(total, v)
		if err != nil {
			return nil, errors.Wrapf(err, "enumerable: sum %q", field)
		}
		total = next
	}
	return total, nil
}

// Avg is Sum divided by Count. It is absent for an empty set.
func (c *Context) Avg(field string) (option.Option[float64], error) {
	start := time.Now()
	working, err := c.workingSet()
	result := option.Nothing[float64]()
	if err == nil && len(working) > 0 {
		var total any
		total, err = c.sum(working, field)
		if err == nil {
			result = option.Some(toFloat(total) / float64(len(working)))
		}
	}
	c.observe(OperationAvg, start, len(working), countOfOption(result), err)
	return result, err
}

// Min returns the smallest value of field, absent for an empty set. When the
// other values are numeric a missing value takes part as 0.
func (c *Context) Min(field string) (option.Option[any], error) {
	return c.extremum(OperationMin, field, -1)
}

// Max mirrors Min.
func (c *Context) Max(field string) (option.Option[any], error) {
	return c.extremum(OperationMax, field, 1)
}

func (c *Context) extremum(operation, field string, sign int) (option.Option[any], error) {
	start := time.Now()
	working, err := c.workingSet()
	result := option.Nothing[any]()
	if err == nil {
		result, err = c.pick(extremumValues(working, field), sign)
		if err != nil {
			err = errors.Wrapf(err, "enumerable: %s %q", operation, field)
		}
	}
	c.observe(operation, start, len(working), countOfOption(result), err)
	return result, err
}

func (c *Context) pick(values []any, sign int) (option.Option[any], error) {
	if len(values) == 0 {
		return option.Nothing[any](), nil
	}
	best := values[0]
	for _, v := range values[1:] {
		cmp, err := c.registry.Compare(v, best)
		if err != nil {
			return option.Nothing[any](), err
		}
		if cmp*sign > 0 {
			best = v
		}
	}
	return option.Some(best), nil
}

// extremumValues collects field over docs. Missing values become int64(0)
// when every present value is numeric and are dropped otherwise.
func extremumValues(docs []document.Document, field string) []any {
	values := make([]any, 0, len(docs))
	numeric := true
	for _, doc := range docs {
		v := document.Value(doc, field)
		if v != nil && !operators.IsNumeric(v) {
			numeric = false
		}
		values = append(values, v)
	}
	result := values[:0]
	for _, v := range values {
		switch {
		case v != nil:
			result = append(result, v)
		case numeric:
			result = append(result, int64(0))
		}
	}
	return result
}

// Distinct returns the values of field in first-occurrence order.
func (c *Context) Distinct(field string) ([]any, error) {
	start := time.Now()
	working, err := c.workingSet()
	var values []any
	if err == nil {
		values = make([]any, 0)
		for _, doc := range working {
			v := document.Value(doc, field)
			if !c.contains(values, v) {
				values = append(values, v)
			}
		}
	}
	c.observe(OperationDistinct, start, len(working), len(values), err)
	return values, err
}

func (c *Context) contains(values []any, v any) bool {
	for _, existing := range values {
		if c.registry.Equal(existing, v) {
			return true
		}
	}
	return false
}

// Group partitions the working set by the projected fields (Criteria.Only).
// Without a projection every document falls into the nil group.
func (c *Context) Group() (Groups, error) {
	return c.GroupBy(c.criteria.Fields()...)
}

// GroupBy partitions the working set by the given fields. A single field
// keys the group by its value, several fields by a []any tuple.
func (c *Context) GroupBy(fields ...string) (Groups, error) {
	start := time.Now()
	working, err := c.workingSet()
	var groups Groups
	if err == nil {
		groups = c.group(working, fields)
	}
	c.observe(OperationGroup, start, len(working), len(groups), err)
	return groups, err
}

// Aggregate counts documents per group key, see Group.
func (c *Context) Aggregate() (Counts, error) {
	return c.AggregateBy(c.criteria.Fields()...)
}

func (c *Context) AggregateBy(fields ...string) (Counts, error) {
	start := time.Now()
	working, err := c.workingSet()
	var counts Counts
	if err == nil {
		groups := c.group(working, fields)
		counts = make(Counts, len(groups))
		for i, g := range groups {
			counts[i] = Count{Key: g.Key, Count: len(g.Documents)}
		}
	}
	c.observe(OperationAggregate, start, len(working), len(counts), err)
	return counts, err
}

func (c *Context) group(docs []document.Document, fields []string) Groups {
	groups := make(Groups, 0)
	for _, doc := range docs {
		key := groupKey(doc, fields)
		i := groups.index(c.registry, key)
		if i < 0 {
			groups = append(groups, Group{Key: key})
			i = len(groups) - 1
		}
		groups[i].Documents = append(groups[i].Documents, doc)
	}
	return groups
}

func groupKey(doc document.Document, fields []string) any {
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return document.Value(doc, fields[0])
	}
	key := make([]any, len(fields))
	for i, f := range fields {
		key[i] = document.Value(doc, f)
	}
	return key
}

type Group struct {
	Key       any
	Documents []document.Document
}

// Groups keeps groups in first-occurrence order of their keys.
type Groups []Group

// Get looks a group up by key; numeric keys match across Go numeric types.
func (g Groups) Get(key any) ([]document.Document, bool) {
	if i := g.index(keyRegistry, key); i >= 0 {
		return g[i].Documents, true
	}
	return nil, false
}

func (g Groups) Keys() []any {
	keys := make([]any, len(g))
	for i, group := range g {
		keys[i] = group.Key
	}
	return keys
}

func (g Groups) index(reg *operators.OperatorRegistry, key any) int {
	for i, group := range g {
		if keysEqual(reg, group.Key, key) {
			return i
		}
	}
	return -1
}

type Count struct {
	Key   any
	Count int
}

type Counts []Count

func (c Counts) Get(key any) (int, bool) {
	for _, entry := range c {
		if keysEqual(keyRegistry, entry.Key, key) {
			return entry.Count, true
		}
	}
	return 0, false
}

var keyRegistry = operators.NewDefaultRegistry()

func keysEqual(reg *operators.OperatorRegistry, a, b any) bool {
	ta, ok1 := a.([]any)
	tb, ok2 := b.([]any)
	if !ok1 || !ok2 {
		return !ok1 && !ok2 && reg.Equal(a, b)
	}
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if !reg.Equal(ta[i], tb[i]) {
			return false
		}
	}
	return true
}

func toFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	case rv.CanFloat():
		return rv.Float()
	}
	return 0
}

func countOfOption[T any](o option.Option[T]) int {
	if o.IsSome() {
		return 1
	}
	return 0
}
