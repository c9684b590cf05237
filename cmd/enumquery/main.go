// Command enumquery runs a query over a JSON array of documents, read from a
// file, stdin or a postgres table, and prints the result as JSON.
//
//	enumquery --where '{"city":"Moscow","number":{"$gt":2}}' --sort street:asc,number:desc --limit 10 addresses.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/config"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/contexts/enumerable"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/criteria"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/instrument"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session/pgx"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/store/pg"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "enumquery:", err)
		os.Exit(1)
	}
}

type flags struct {
	config string
	where  string
	sort   string
	only   string
	skip   int
	limit  int
	op     string
	field  string
	table  string
	input  string
}

// newRootCmd binds the flags and hands them to action once cobra has parsed
// the command line.
func newRootCmd(action func(context.Context, *flags) error) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "enumquery [flags] [file]",
		Short:         "Query a JSON array of documents in memory",
		Example:       `  enumquery --where '{"city":"Moscow"}' --sort street:asc --limit 10 addresses.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("at most one input file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.input = args[0]
			}
			return action(cmd.Context(), f)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.config, "config", "", "config file")
	fs.StringVar(&f.where, "where", "", "selector as a JSON object")
	fs.StringVar(&f.sort, "sort", "", "sort keys, field:asc|desc separated by commas")
	fs.StringVar(&f.only, "only", "", "projected fields separated by commas, used by group and aggregate")
	fs.IntVar(&f.skip, "skip", -1, "documents to skip")
	fs.IntVar(&f.limit, "limit", -1, "maximum documents to return")
	fs.StringVar(&f.op, "op", enumerable.OperationExecute, "execute, first, last, size, count, sum, avg, min, max, distinct, group or aggregate")
	fs.StringVar(&f.field, "field", "", "field for sum, avg, min, max and distinct")
	fs.StringVar(&f.table, "table", "", "load documents from this postgres table instead of JSON input")
	return cmd
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func parseFlags(args []string) (*flags, error) {
	var parsed *flags
	cmd := newRootCmd(func(_ context.Context, f *flags) error {
		parsed = f
		return nil
	})
	if err := execute(context.Background(), cmd, args); err != nil {
		return nil, err
	}
	return parsed, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := newRootCmd(func(ctx context.Context, f *flags) error {
		return query(ctx, f, stdin, stdout)
	})
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	return execute(ctx, cmd, args)
}

func query(ctx context.Context, f *flags, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	logger, err := instrument.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := buildCriteria(f)
	if err != nil {
		return err
	}
	docs, err := loadDocuments(ctx, f, cfg, c, stdin)
	if err != nil {
		return err
	}
	logger.Debug("documents loaded", zap.Int("count", len(docs)), zap.String("table", f.table))

	qctx := enumerable.New(c.WithDocuments(docs), cfg.ContextOptions(logger)...)
	result, err := perform(qctx, f.op, f.field)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func buildCriteria(f *flags) (*criteria.Criteria, error) {
	c := criteria.New(nil)
	if f.where != "" {
		selector := map[string]any{}
		if err := json.Unmarshal([]byte(f.where), &selector); err != nil {
			return nil, errors.Wrap(err, "where")
		}
		var err error
		if c, err = c.Where(selector); err != nil {
			return nil, err
		}
	}
	if f.sort != "" {
		keys, err := criteria.ParseSort(f.sort)
		if err != nil {
			return nil, err
		}
		c = c.OrderBy(keys...)
	}
	if f.skip >= 0 {
		c = c.Skip(f.skip)
	}
	if f.limit >= 0 {
		c = c.Limit(f.limit)
	}
	if f.only != "" {
		c = c.Only(strings.Split(f.only, ",")...)
	}
	return c, nil
}

func loadDocuments(ctx context.Context, f *flags, cfg *config.Config, c *criteria.Criteria, stdin io.Reader) ([]document.Document, error) {
	if f.table != "" {
		return loadTable(ctx, f.table, cfg.Postgres.DSN, c)
	}
	r := stdin
	if f.input != "" && f.input != "-" {
		file, err := os.Open(f.input)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	var maps []map[string]any
	if err := json.NewDecoder(r).Decode(&maps); err != nil {
		return nil, errors.Wrap(err, "decode documents")
	}
	return document.FromMaps(maps), nil
}

// loadTable narrows the rows on the server with the same selector; the query
// context then applies it again along with sorting and pagination.
func loadTable(ctx context.Context, table, dsn string, c *criteria.Criteria) ([]document.Document, error) {
	if dsn == "" {
		return nil, errors.New("postgres.dsn is not configured")
	}
	selector, err := c.SelectorMap()
	if err != nil {
		return nil, err
	}
	pool, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	var docs []document.Document
	err = pool.Session(ctx, func(s session.Session) error {
		docs, err = pg.NewCollection(table).Find(s, selector)
		return err
	})
	return docs, err
}

func perform(ctx *enumerable.Context, op, field string) (any, error) {
	needField := func() error {
		if field == "" {
			return errors.Errorf("--field is required for %s", op)
		}
		return nil
	}
	switch op {
	case enumerable.OperationExecute:
		docs, err := ctx.Execute()
		return documentMaps(docs), err
	case enumerable.OperationFirst, enumerable.OperationOne:
		doc, err := ctx.First()
		return documentMap(doc), err
	case enumerable.OperationLast:
		doc, err := ctx.Last()
		return documentMap(doc), err
	case enumerable.OperationSize:
		return ctx.Size()
	case enumerable.OperationCount:
		return ctx.Count()
	case enumerable.OperationSum:
		if err := needField(); err != nil {
			return nil, err
		}
		return ctx.Sum(field)
	case enumerable.OperationAvg:
		if err := needField(); err != nil {
			return nil, err
		}
		avg, err := ctx.Avg(field)
		if v, ok := avg.Get(); ok {
			return v, err
		}
		return nil, err
	case enumerable.OperationMin, enumerable.OperationMax:
		if err := needField(); err != nil {
			return nil, err
		}
		extremum := ctx.Min
		if op == enumerable.OperationMax {
			extremum = ctx.Max
		}
		result, err := extremum(field)
		return result.UnwrapOrZero(), err
	case enumerable.OperationDistinct:
		if err := needField(); err != nil {
			return nil, err
		}
		return ctx.Distinct(field)
	case enumerable.OperationGroup:
		groups, err := ctx.Group()
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(groups))
		for i, g := range groups {
			out[i] = map[string]any{"key": g.Key, "documents": documentMaps(g.Documents)}
		}
		return out, nil
	case enumerable.OperationAggregate:
		counts, err := ctx.Aggregate()
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(counts))
		for i, c := range counts {
			out[i] = map[string]any{"key": c.Key, "count": c.Count}
		}
		return out, nil
	default:
		return nil, errors.Errorf("unknown operation: %s", op)
	}
}

func documentMaps(docs []document.Document) []map[string]any {
	out := make([]map[string]any, len(docs))
	for i, doc := range docs {
		out[i] = documentMap(doc)
	}
	return out
}

func documentMap(doc document.Document) map[string]any {
	if attrs, ok := doc.(*document.Attributes); ok {
		return attrs.Map()
	}
	return nil
}
