package document

import (
	"strings"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
)

// Attributes is a map-backed document. Dotted field names ("address.city")
// reach into nested map[string]any values.
type Attributes struct {
	attrs map[string]any
}

func New(attrs map[string]any) *Attributes {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &Attributes{attrs: attrs}
}

func (a *Attributes) Get(field string) option.Option[any] {
	if v, ok := a.attrs[field]; ok {
		return option.Some(v)
	}
	if !strings.Contains(field, ".") {
		return option.Nothing[any]()
	}
	var current any = a.attrs
	for _, key := range strings.Split(field, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return option.Nothing[any]()
		}
		current, ok = m[key]
		if !ok {
			return option.Nothing[any]()
		}
	}
	return option.Some(current)
}

func (a *Attributes) Set(field string, value any) {
	a.attrs[field] = value
}

func (a *Attributes) ID() any {
	return a.attrs[IdField]
}

// EnsureID assigns a generated primary key unless one is present.
func (a *Attributes) EnsureID(gen IDGenerator) any {
	if id, ok := a.attrs[IdField]; ok && id != nil {
		return id
	}
	id := gen.NewID()
	a.attrs[IdField] = id
	return id
}

// Map returns the underlying attributes.
func (a *Attributes) Map() map[string]any {
	return a.attrs
}

// AtomicSelector identifies the document in its remote collection.
func (a *Attributes) AtomicSelector() map[string]any {
	return map[string]any{IdField: a.ID()}
}

// AtomicPath is empty for root documents.
func (a *Attributes) AtomicPath() string {
	return ""
}

// FromMaps wraps every map as a document, keeping order.
func FromMaps(maps []map[string]any) []Document {
	docs := make([]Document, len(maps))
	for i, m := range maps {
		docs[i] = New(m)
	}
	return docs
}
