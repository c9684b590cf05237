package criteria

import "github.com/krew-solutions/ascetic-odm-go/asceticodm/option"

// Options carries the sort specification and the pagination window. Absent
// skip and limit mean "from the start" and "to the end".
type Options struct {
	Sort  Sort
	Skip  option.Option[int]
	Limit option.Option[int]
}

// Map renders the options the way a query is written, omitting absent parts.
func (o Options) Map() map[string]any {
	result := make(map[string]any)
	if !o.Sort.IsEmpty() {
		sort := make([]any, len(o.Sort))
		for i, k := range o.Sort {
			sort[i] = []any{k.Field, int(k.Direction)}
		}
		result["sort"] = sort
	}
	if skip, ok := o.Skip.Get(); ok {
		result["skip"] = skip
	}
	if limit, ok := o.Limit.Get(); ok {
		result["limit"] = limit
	}
	return result
}
