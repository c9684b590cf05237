package enumerable

import (
	"sort"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/criteria"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
)

// compareDocuments walks the sort keys in precedence order and returns at the
// first key that tells a and b apart.
func compareDocuments(reg *operators.OperatorRegistry, a, b document.Document, keys criteria.Sort) (int, error) {
	for _, key := range keys {
		c, err := reg.Compare(document.Value(a, key.Field), document.Value(b, key.Field))
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c * int(key.Direction), nil
		}
	}
	return 0, nil
}

// sortDocuments orders docs in place. Equal documents keep their relative
// order. The first comparison error aborts the sort and is returned.
func sortDocuments(reg *operators.OperatorRegistry, docs []document.Document, keys criteria.Sort) error {
	if keys.IsEmpty() {
		return nil
	}
	var sortErr error
	sort.SliceStable(docs, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := compareDocuments(reg, docs[i], docs[j], keys)
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	return sortErr
}
