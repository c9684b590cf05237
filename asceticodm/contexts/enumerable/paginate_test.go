package enumerable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
)

func TestPaginate(t *testing.T) {
	docs := upperStreet()
	none := option.Nothing[int]()

	cases := []struct {
		name        string
		skip, limit option.Option[int]
		expected    []int
	}{
		{"no window", none, none, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"skip", option.Some(7), none, []int{7, 8, 9}},
		{"limit", none, option.Some(3), []int{0, 1, 2}},
		{"window", option.Some(2), option.Some(3), []int{2, 3, 4}},
		{"limit past end", option.Some(8), option.Some(5), []int{8, 9}},
		{"skip at end", option.Some(10), none, []int{}},
		{"skip past end", option.Some(11), option.Some(1), []int{}},
		{"limit zero", none, option.Some(0), []int{}},
		{"negative skip", option.Some(-3), option.Some(2), []int{0, 1}},
		{"negative limit", option.Some(1), option.Some(-2), []int{}},
		{"huge limit", option.Some(9), option.Some(int(^uint(0) >> 1)), []int{9}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, numbers(t, Paginate(docs, c.skip, c.limit)))
		})
	}

	assert.Empty(t, Paginate(nil, option.Some(1), none))
}
