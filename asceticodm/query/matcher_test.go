package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
)

type postCode int

type location struct {
	Street string `json:"street"`
	Number *int   `json:"number"`
}

func matches(t *testing.T, selector map[string]any, attrs map[string]any) bool {
	t.Helper()
	parsed, err := ParseSelector(selector)
	require.NoError(t, err)
	ok, err := NewMatcher(nil).Matches(document.New(attrs), parsed)
	require.NoError(t, err)
	return ok
}

func TestMatcherEquality(t *testing.T) {
	doc := map[string]any{"street": "Bourke Street", "number": 20, "city": nil}

	assert.True(t, matches(t, map[string]any{}, doc), "empty selector matches everything")
	assert.True(t, matches(t, map[string]any{"street": "Bourke Street"}, doc))
	assert.False(t, matches(t, map[string]any{"street": "Broadway"}, doc))
	assert.True(t, matches(t, map[string]any{"street": "Bourke Street", "number": 20}, doc))
	assert.False(t, matches(t, map[string]any{"street": "Bourke Street", "number": 10}, doc))
	assert.True(t, matches(t, map[string]any{"number": int64(20)}, doc), "integer widths are compared by value")
	assert.True(t, matches(t, map[string]any{"number": 20.0}, doc))
	assert.True(t, matches(t, map[string]any{"city": nil}, doc))
	assert.True(t, matches(t, map[string]any{"zip": nil}, doc), "missing field reads as nil")
	assert.False(t, matches(t, map[string]any{"zip": "60661"}, doc))
}

func TestMatcherComparison(t *testing.T) {
	doc := map[string]any{"number": 10, "post_code": postCode(60661), "city": nil}

	cases := []struct {
		op       string
		value    any
		expected bool
	}{
		{"$gt", 5, true},
		{"$gt", 10, false},
		{"$gte", 10, true},
		{"$lt", 15, true},
		{"$lt", 10, false},
		{"$lte", 10, true},
		{"$ne", 10, false},
		{"$ne", 11, true},
		{"$gt", 9.5, true},
	}
	for _, c := range cases {
		t.Run(c.op, func(t *testing.T) {
			assert.Equal(t, c.expected, matches(t, map[string]any{"number": map[string]any{c.op: c.value}}, doc))
		})
	}

	assert.True(t, matches(t, map[string]any{"post_code": map[string]any{"$gte": 60000}}, doc))
	assert.False(t, matches(t, map[string]any{"city": map[string]any{"$gt": 1}}, doc), "nil never orders")
	assert.True(t, matches(t, map[string]any{"city": map[string]any{"$ne": 1}}, doc))
	assert.True(t, matches(t, map[string]any{"number": map[string]any{"$gte": 10, "$lt": 20}}, doc))
	assert.False(t, matches(t, map[string]any{"number": map[string]any{"$gt": 10, "$lt": 20}}, doc))
}

func TestMatcherTypeMismatch(t *testing.T) {
	parsed, err := ParseSelector(map[string]any{"street": map[string]any{"$gt": 10}})
	require.NoError(t, err)
	_, err = NewMatcher(nil).Matches(document.New(map[string]any{"street": "Broadway"}), parsed)
	assert.ErrorIs(t, err, operators.ErrTypeMismatch)
}

func TestMatcherInAndNull(t *testing.T) {
	doc := map[string]any{"number": 10, "city": nil}

	assert.True(t, matches(t, map[string]any{"number": map[string]any{"$in": []any{1, 10}}}, doc))
	assert.False(t, matches(t, map[string]any{"number": map[string]any{"$in": []any{1, 20}}}, doc))
	assert.True(t, matches(t, map[string]any{"number": map[string]any{"$in": []any{"x", 10}}}, doc),
		"mixed kinds compare by equality only")
	assert.True(t, matches(t, map[string]any{"city": map[string]any{"$is_null": true}}, doc))
	assert.False(t, matches(t, map[string]any{"number": map[string]any{"$is_null": true}}, doc))
	assert.True(t, matches(t, map[string]any{"number": map[string]any{"$is_null": false}}, doc))
}

func TestMatcherLogical(t *testing.T) {
	doc := map[string]any{"street": "Broadway", "number": 20}

	assert.True(t, matches(t, map[string]any{"$or": []any{
		map[string]any{"street": "Bond Street"},
		map[string]any{"number": 20},
	}}, doc))
	assert.False(t, matches(t, map[string]any{"$or": []any{
		map[string]any{"street": "Bond Street"},
		map[string]any{"number": 10},
	}}, doc))
	assert.True(t, matches(t, map[string]any{"$and": []any{
		map[string]any{"street": "Broadway"},
		map[string]any{"number": map[string]any{"$gt": 1}},
	}}, doc))
}

func TestMatcherNested(t *testing.T) {
	doc := map[string]any{"city": map[string]any{"name": "Berlin", "zip": 10115}}

	assert.True(t, matches(t, map[string]any{"city.name": "Berlin"}, doc))
	assert.False(t, matches(t, map[string]any{"city.name": "Melbourne"}, doc))
	assert.True(t, matches(t, map[string]any{"city.zip": map[string]any{"$gt": 10000}}, doc))
	assert.False(t, matches(t, map[string]any{"number": map[string]any{"field": 1}}, doc),
		"sub-document query against a scalar does not match")
}

func TestMatcherSubDocumentEquality(t *testing.T) {
	doc := map[string]any{"address": map[string]any{"city": "Berlin", "zip": 10115}}

	assert.False(t, matches(t, map[string]any{"address": map[string]any{"city": "Berlin"}}, doc),
		"a sub-document matches only as a whole")
	assert.True(t, matches(t, map[string]any{"address": map[string]any{"city": "Berlin", "zip": 10115}}, doc))
	assert.False(t, matches(t, map[string]any{"address": map[string]any{"$eq": map[string]any{"city": "Berlin"}}}, doc))
	assert.True(t, matches(t, map[string]any{"address": map[string]any{"$eq": map[string]any{"city": "Berlin", "zip": 10115}}}, doc))
	assert.True(t, matches(t, map[string]any{"address": map[string]any{"$ne": map[string]any{"city": "Berlin"}}}, doc))
	assert.True(t, matches(t, map[string]any{"address": map[string]any{"$in": []any{
		map[string]any{"city": "Paris"},
		map[string]any{"city": "Berlin", "zip": 10115},
	}}}, doc))
	assert.True(t, matches(t, map[string]any{"address.city": "Berlin"}, doc), "dotted fields match partially")
}

func TestMatcherStructDocuments(t *testing.T) {
	n := 20
	parsed, err := ParseSelector(map[string]any{"street": "Broadway", "number": map[string]any{"$gte": 20}})
	require.NoError(t, err)

	m := NewMatcher(operators.NewDefaultRegistry())
	ok, err := m.Matches(document.FromStruct(location{Street: "Broadway", Number: &n}), parsed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Matches(document.FromStruct(&location{Street: "Broadway"}), parsed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatcherNinAndExists(t *testing.T) {
	doc := map[string]any{"number": 10, "city": nil}

	assert.False(t, matches(t, map[string]any{"number": map[string]any{"$nin": []int{5, 10}}}, doc))
	assert.True(t, matches(t, map[string]any{"number": map[string]any{"$nin": []int{5, 11}}}, doc))
	assert.True(t, matches(t, map[string]any{"zip": map[string]any{"$nin": []any{"60661"}}}, doc), "missing field is not in any list")

	assert.True(t, matches(t, map[string]any{"number": map[string]any{"$exists": true}}, doc))
	assert.False(t, matches(t, map[string]any{"city": map[string]any{"$exists": true}}, doc))
	assert.True(t, matches(t, map[string]any{"zip": map[string]any{"$exists": false}}, doc))
}
