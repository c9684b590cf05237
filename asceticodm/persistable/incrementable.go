// Package persistable holds atomic write helpers that change a loaded
// document and send the same change to its collection.
package persistable

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session"
)

// Collection is the remote side of an atomic write: apply operations to the
// documents matching selector.
type Collection interface {
	Update(s session.Session, selector map[string]any, operations map[string]any) error
}

// IncrementableDocument is a document that knows where it is stored.
// AtomicSelector finds its root document, AtomicPath prefixes its fields when
// it is embedded ("addresses.1"), and is empty otherwise.
type IncrementableDocument interface {
	document.Document
	Set(field string, value any)
	AtomicSelector() map[string]any
	AtomicPath() string
}

var registry = operators.NewDefaultRegistry()

// Inc adds each delta to its field, both in memory and in the collection, as
// one "$inc" operation. A missing or nil field counts as 0. Every delta is
// checked first; when any is invalid nothing changes and all problems are
// reported together.
func Inc(s session.Session, coll Collection, doc IncrementableDocument, increments map[string]any) error {
	if len(increments) == 0 {
		return nil
	}
	fields := make([]string, 0, len(increments))
	for f := range increments {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	values := make(map[string]any, len(fields))
	var result *multierror.Error
	for _, f := range fields {
		delta := increments[f]
		current := document.Value(doc, f)
		if current == nil {
			current = int64(0)
		}
		next, err := registry.Add(current, delta)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "field %q", f))
			continue
		}
		values[f] = next
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	ops := make(map[string]any, len(fields))
	for _, f := range fields {
		doc.Set(f, values[f])
		ops[atomicName(doc, f)] = increments[f]
	}
	if err := coll.Update(s, doc.AtomicSelector(), map[string]any{"$inc": ops}); err != nil {
		return errors.Wrap(err, "inc")
	}
	return nil
}

func atomicName(doc IncrementableDocument, field string) string {
	if path := doc.AtomicPath(); path != "" {
		return path + "." + field
	}
	return field
}
