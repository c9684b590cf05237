// Package enumerable runs criteria against documents that are already in
// memory: filter, sort, paginate and aggregate without a database round trip.
package enumerable

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/criteria"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/option"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query/operators"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/signals"
)

// Option configures a Context built by New.
type Option func(*Context)

// WithRaiseNotFoundError makes First, One, Last and Shift fail with
// DocumentNotFoundError instead of returning nil.
func WithRaiseNotFoundError(raise bool) Option {
	return func(c *Context) {
		c.raiseNotFound = raise
	}
}

// WithLogger sets the logger for query diagnostics. A nil logger keeps the
// no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry sets the operator registry used for matching, sorting and
// sums.
func WithRegistry(registry *operators.OperatorRegistry) Option {
	return func(c *Context) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// Context evaluates the current criteria on every call; nothing is cached
// between calls, so setters take effect immediately. A Context is not safe
// for concurrent use.
type Context struct {
	criteria      *criteria.Criteria
	cursor        int
	raiseNotFound bool
	registry      *operators.OperatorRegistry
	matcher       *query.Matcher
	logger        *zap.Logger
	onQuery       *signals.Hub[QueryEvent]
}

// New returns a Context over c. A nil criteria matches every document.
func New(c *criteria.Criteria, opts ...Option) *Context {
	if c == nil {
		c = criteria.New(nil)
	}
	ctx := &Context{
		criteria: c,
		logger:   zap.NewNop(),
		onQuery:  signals.NewHub[QueryEvent](),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.registry == nil {
		ctx.registry = operators.NewDefaultRegistry()
	}
	ctx.matcher = query.NewMatcher(ctx.registry)
	return ctx
}

// OnQuery emits one QueryEvent per finished operation.
func (c *Context) OnQuery() signals.Signal[QueryEvent] {
	return c.onQuery
}

func (c *Context) Criteria() *criteria.Criteria {
	return c.criteria
}

func (c *Context) Selector() query.Expr {
	return c.criteria.Selector()
}

func (c *Context) SelectorMap() (map[string]any, error) {
	return c.criteria.SelectorMap()
}

func (c *Context) Options() criteria.Options {
	return c.criteria.Options()
}

func (c *Context) Documents() []document.Document {
	return c.criteria.Documents()
}

// SetCriteria swaps the whole query. The shift cursor is kept.
func (c *Context) SetCriteria(cr *criteria.Criteria) {
	if cr == nil {
		cr = criteria.New(nil)
	}
	c.criteria = cr
}

func (c *Context) SetSelector(selector query.Expr) {
	c.criteria = c.criteria.WithSelector(selector)
}

func (c *Context) SetOptions(opts criteria.Options) {
	c.criteria = c.criteria.WithOptions(opts)
}

func (c *Context) SetDocuments(docs []document.Document) {
	c.criteria = c.criteria.WithDocuments(docs)
}

// Cursor is the number of documents consumed by Shift so far.
func (c *Context) Cursor() int {
	return c.cursor
}

func (c *Context) Rewind() {
	c.cursor = 0
}

// Execute filters, sorts and paginates the documents. The returned slice is
// fresh; the documents in it are the caller's own references.
func (c *Context) Execute() ([]document.Document, error) {
	start := time.Now()
	working, page, err := c.execute()
	c.observe(OperationExecute, start, len(working), len(page), err)
	return page, err
}

func (c *Context) First() (document.Document, error) {
	return c.first(OperationFirst)
}

// One is an alias of First.
func (c *Context) One() (document.Document, error) {
	return c.first(OperationOne)
}

func (c *Context) Last() (document.Document, error) {
	start := time.Now()
	working, page, err := c.execute()
	var doc document.Document
	if err == nil {
		if len(page) > 0 {
			doc = page[len(page)-1]
		} else {
			err = c.notFound()
		}
	}
	c.observe(OperationLast, start, len(working), countOf(doc), err)
	return doc, err
}

// Iterate calls fn once per document in Execute order.
func (c *Context) Iterate(fn func(document.Document)) error {
	start := time.Now()
	working, page, err := c.execute()
	if err == nil {
		for _, doc := range page {
			fn(doc)
		}
	}
	c.observe(OperationIterate, start, len(working), len(page), err)
	return err
}

// Shift returns what First would return and advances the cursor, so the next
// read starts one document later.
func (c *Context) Shift() (document.Document, error) {
	doc, err := c.first(OperationShift)
	if err != nil {
		return nil, err
	}
	c.cursor++
	return doc, nil
}

// Size is the number of documents Execute returns, skip and limit included.
func (c *Context) Size() (int, error) {
	start := time.Now()
	working, page, err := c.execute()
	c.observe(OperationSize, start, len(working), len(page), err)
	return len(page), err
}

func (c *Context) first(operation string) (document.Document, error) {
	start := time.Now()
	working, page, err := c.execute()
	var doc document.Document
	if err == nil {
		if len(page) > 0 {
			doc = page[0]
		} else {
			err = c.notFound()
		}
	}
	c.observe(operation, start, len(working), countOf(doc), err)
	return doc, err
}

func (c *Context) notFound() error {
	if !c.raiseNotFound {
		return nil
	}
	selector, err := c.criteria.SelectorMap()
	if err != nil {
		selector = nil
	}
	return &DocumentNotFoundError{Selector: selector}
}

func (c *Context) execute() (working, page []document.Document, err error) {
	working, err = c.workingSet()
	if err != nil {
		return working, nil, err
	}
	opts := c.criteria.Options()
	skip := option.Some(addSkip(max(opts.Skip.UnwrapOr(0), 0), c.cursor))
	return working, Paginate(working, skip, opts.Limit), nil
}

// addSkip saturates at math.MaxInt.
func addSkip(skip, cursor int) int {
	if skip > math.MaxInt-cursor {
		return math.MaxInt
	}
	return skip + cursor
}

// workingSet is the filtered and sorted document list every read and
// aggregation starts from.
func (c *Context) workingSet() ([]document.Document, error) {
	docs, err := c.filter()
	if err != nil {
		return docs, err
	}
	if err := sortDocuments(c.registry, docs, c.criteria.Options().Sort); err != nil {
		return docs, errors.Wrap(err, "enumerable: sort")
	}
	return docs, nil
}

func (c *Context) filter() ([]document.Document, error) {
	selector := c.criteria.Selector()
	source := c.criteria.Documents()
	result := make([]document.Document, 0, len(source))
	for _, doc := range source {
		ok, err := c.matcher.Matches(doc, selector)
		if err != nil {
			return result, errors.Wrap(err, "enumerable: filter")
		}
		if ok {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (c *Context) observe(operation string, start time.Time, matched, returned int, err error) {
	var notFound *DocumentNotFoundError
	switch {
	case errors.As(err, &notFound):
		c.logger.Debug("no document matched", zap.String("operation", operation), zap.Any("selector", notFound.Selector))
	case err != nil:
		c.logger.Debug("query failed", zap.String("operation", operation), zap.Error(err))
	}
	c.onQuery.Notify(QueryEvent{
		Operation: operation,
		Matched:   matched,
		Returned:  returned,
		Duration:  time.Since(start),
		Err:       err,
	})
}

func countOf(doc document.Document) int {
	if doc == nil {
		return 0
	}
	return 1
}
