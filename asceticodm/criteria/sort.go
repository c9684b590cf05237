package criteria

import (
	"fmt"
	"strings"
)

type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortKey is one (field, direction) pair of a sort specification.
type SortKey struct {
	Field     string
	Direction Direction
}

func (k SortKey) String() string {
	return k.Field + ":" + k.Direction.String()
}

// Field tags a field name with a sort direction: Field("number").Desc().
type Field string

func (f Field) Asc() SortKey {
	return SortKey{Field: string(f), Direction: Ascending}
}

func (f Field) Desc() SortKey {
	return SortKey{Field: string(f), Direction: Descending}
}

// Sort lists sort keys in precedence order.
type Sort []SortKey

func (s Sort) IsEmpty() bool {
	return len(s) == 0
}

func (s Sort) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

// ParseSort reads "field", "field:asc" and "field:desc" items. A single item
// may hold several comma separated keys.
func ParseSort(specs ...string) (Sort, error) {
	var result Sort
	for _, spec := range specs {
		for _, item := range strings.Split(spec, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key, err := parseSortKey(item)
			if err != nil {
				return nil, err
			}
			result = append(result, key)
		}
	}
	return result, nil
}

func parseSortKey(item string) (SortKey, error) {
	field, dir, found := strings.Cut(item, ":")
	if field == "" {
		return SortKey{}, fmt.Errorf("sort key without field: %q", item)
	}
	if !found {
		return Field(field).Asc(), nil
	}
	switch strings.ToLower(dir) {
	case "asc", "1":
		return Field(field).Asc(), nil
	case "desc", "-1":
		return Field(field).Desc(), nil
	default:
		return SortKey{}, fmt.Errorf("unknown sort direction %q for field %q", dir, field)
	}
}
