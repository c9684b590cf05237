package enumerable

import (
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
)

// Paginate returns the window [skip, skip+limit) of docs. Negative values
// count as zero, an absent limit runs to the end and a window starting past
// the end is empty. The result shares the backing array of docs.
func Paginate(docs []document.Document, skip, limit option.Option[int]) []document.Document {
	start := max(skip.UnwrapOr(0), 0)
	if start >= len(docs) {
		return docs[:0:0]
	}
	end := len(docs)
	if l, ok := limit.Get(); ok && max(l, 0) < end-start {
		end = start + max(l, 0)
	}
	return docs[start:end]
}
