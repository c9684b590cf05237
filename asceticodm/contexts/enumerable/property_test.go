package enumerable

import (
	"math/rand"
	"testing"

	"github.com/icrowley/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/criteria"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
)

const rounds = 25

// generateAddresses builds documents with a small value range per field so
// that selectors match and sort keys tie often.
func generateAddresses(rnd *rand.Rand) []document.Document {
	cities := []string{fake.City(), fake.City(), fake.City()}
	docs := make([]document.Document, rnd.Intn(40))
	for i := range docs {
		attrs := map[string]any{
			"street": faker.Address().StreetName(),
			"city":   cities[rnd.Intn(len(cities))],
			"zone":   rnd.Intn(4),
			"seq":    i,
		}
		if rnd.Intn(5) > 0 {
			attrs["number"] = rnd.Intn(6)
		}
		docs[i] = document.New(attrs)
	}
	return docs
}

func TestPropertySelectorSubset(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < rounds; i++ {
		docs := generateAddresses(rnd)
		zone := rnd.Intn(4)
		ctx := New(where(t, criteria.New(docs), map[string]any{"zone": zone}))

		result, err := ctx.Execute()
		require.NoError(t, err)

		expected := make([]document.Document, 0)
		for _, doc := range docs {
			if document.Value(doc, "zone") == zone {
				expected = append(expected, doc)
			}
		}
		assert.Equal(t, expected, result)
	}
}

func TestPropertyStableMultiKeySort(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < rounds; i++ {
		docs := generateAddresses(rnd)
		keys := criteria.Sort{criteria.Field("zone").Desc(), criteria.Field("number").Asc()}

		result, err := New(criteria.New(docs).OrderBy(keys...)).Execute()
		require.NoError(t, err)
		require.Len(t, result, len(docs))

		for i := 1; i < len(result); i++ {
			prev, next := result[i-1], result[i]
			c, err := compareDocuments(operators.NewDefaultRegistry(), prev, next, keys)
			require.NoError(t, err)
			require.LessOrEqual(t, c, 0)
			if c == 0 {
				assert.Less(t, document.Value(prev, "seq"), document.Value(next, "seq"), "ties keep input order")
			}
		}
	}
}

func TestPropertyPaginationLength(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < rounds; i++ {
		docs := generateAddresses(rnd)
		s, l := rnd.Intn(50), rnd.Intn(50)

		page := Paginate(docs, option.Some(s), option.Some(l))

		expected := 0
		if s <= len(docs) {
			expected = max(0, min(l, len(docs)-s))
		}
		assert.Len(t, page, expected)
	}
}

func TestPropertyDistinct(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	for i := 0; i < rounds; i++ {
		docs := generateAddresses(rnd)
		values, err := New(criteria.New(docs)).Distinct("city")
		require.NoError(t, err)

		seen := make(map[any]bool)
		var firstSeen []any
		for _, doc := range docs {
			v := document.Value(doc, "city")
			if !seen[v] {
				seen[v] = true
				firstSeen = append(firstSeen, v)
			}
		}
		assert.Equal(t, len(firstSeen), len(values))
		if len(firstSeen) > 0 {
			assert.Equal(t, firstSeen, values)
		}
	}
}

func TestPropertyGroupPartition(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for i := 0; i < rounds; i++ {
		docs := generateAddresses(rnd)
		ctx := New(criteria.New(docs).Only("number"))

		groups, err := ctx.Group()
		require.NoError(t, err)
		counts, err := ctx.Aggregate()
		require.NoError(t, err)
		require.Len(t, counts, len(groups))

		total := 0
		for i, g := range groups {
			assert.Equal(t, g.Key, counts[i].Key)
			assert.Equal(t, len(g.Documents), counts[i].Count)
			for _, doc := range g.Documents {
				assert.Equal(t, g.Key, document.Value(doc, "number"))
			}
			total += len(g.Documents)
		}
		assert.Equal(t, len(docs), total)
	}
}
