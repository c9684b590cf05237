// Package document defines how the query layer reads records. A query context
// only ever looks fields up by name; it never mutates or copies documents.
package document

import "github.com/krew-solutions/ascetic-odm-go/asceticodm/option"

// IdField is the primary key attribute of every stored document.
const IdField = "_id"

// Document exposes field lookup by name. Nothing means the field is absent.
type Document interface {
	Get(field string) option.Option[any]
}

// Value returns the field value, or nil when the field is absent.
func Value(doc Document, field string) any {
	return doc.Get(field).UnwrapOrZero()
}
