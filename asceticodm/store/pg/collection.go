// Package pg stores documents as jsonb rows in PostgreSQL.
//
// A collection is a table with a single jsonb column named value:
//
//	CREATE TABLE addresses (value jsonb NOT NULL);
package pg

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/persistable"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/query"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session"
)

var ErrNotSQLSession = errors.New("session has no database connection")

type Collection struct {
	table string
}

func NewCollection(table string) *Collection {
	return &Collection{table: table}
}

// NewModelCollection names the table after the model: "Address" is stored
// in addresses.
func NewModelCollection(model string) *Collection {
	return NewCollection(document.CollectionName(model))
}

func (c *Collection) Table() string {
	return c.table
}

// ident quotes the table name; "archive.addresses" names a schema.
func (c *Collection) ident() string {
	return pgx.Identifier(strings.Split(c.table, ".")).Sanitize()
}

// Update applies update operations to every row matching selector. Only
// "$inc" is supported; a missing or non-numeric field is incremented from 0.
func (c *Collection) Update(s session.Session, selector map[string]any, operations map[string]any) error {
	sqls, ok := session.AsSQL(s)
	if !ok {
		return ErrNotSQLSession
	}
	sql, params, err := c.updateSQL(selector, operations)
	if err != nil {
		return err
	}
	if _, err := sqls.Conn().Exec(sql, params...); err != nil {
		return errors.Wrapf(err, "update %s", c.table)
	}
	return nil
}

func (c *Collection) updateSQL(selector map[string]any, operations map[string]any) (string, []any, error) {
	setExpr := "value"
	var params []any
	for _, name := range sortedKeys(operations) {
		if name != "$inc" {
			return "", nil, fmt.Errorf("unsupported update operator: %s", name)
		}
		fields, ok := operations[name].(map[string]any)
		if !ok {
			return "", nil, fmt.Errorf("%s expects a field map, got %T", name, operations[name])
		}
		for _, f := range sortedKeys(fields) {
			path := pathLiteral(f)
			setExpr = fmt.Sprintf(
				"jsonb_set(%s, %s, to_jsonb(COALESCE((value #>> %s)::numeric, 0) + ?))",
				setExpr, path, path,
			)
			params = append(params, fields[f])
		}
	}
	if setExpr == "value" {
		return "", nil, errors.New("no update operations")
	}

	where, whereParams, err := c.where(selector)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("UPDATE %s SET value = %s%s", c.ident(), setExpr, where)
	return Rebind(sql, 1), append(params, whereParams...), nil
}

// Find loads the rows matching selector as documents.
func (c *Collection) Find(s session.Session, selector map[string]any) ([]document.Document, error) {
	sqls, ok := session.AsSQL(s)
	if !ok {
		return nil, ErrNotSQLSession
	}
	where, params, err := c.where(selector)
	if err != nil {
		return nil, err
	}
	rows, err := sqls.Conn().Query(Rebind(fmt.Sprintf("SELECT value FROM %s%s", c.ident(), where), 1), params...)
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s", c.table)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrapf(err, "scan %s", c.table)
		}
		attrs := map[string]any{}
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil, errors.Wrapf(err, "decode %s", c.table)
		}
		docs = append(docs, document.New(attrs))
	}
	return docs, rows.Err()
}

// Count returns the number of rows matching selector without loading them.
func (c *Collection) Count(s session.Session, selector map[string]any) (int64, error) {
	sqls, ok := session.AsSQL(s)
	if !ok {
		return 0, ErrNotSQLSession
	}
	where, params, err := c.where(selector)
	if err != nil {
		return 0, err
	}
	var n int64
	row := sqls.Conn().QueryRow(Rebind(fmt.Sprintf("SELECT count(*) FROM %s%s", c.ident(), where), 1), params...)
	if err := row.Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", c.table)
	}
	return n, nil
}

func (c *Collection) where(selector map[string]any) (string, []any, error) {
	parsed, err := query.ParseSelector(selector)
	if err != nil {
		return "", nil, err
	}
	cond, params, err := NewQueryCompiler("value").compile(parsed)
	if err != nil || cond == "" {
		return "", nil, err
	}
	return " WHERE " + cond, params, nil
}

// pathLiteral renders a dotted field as a text[] path literal: '{a,1,b}'.
func pathLiteral(field string) string {
	return quoteLiteral("{" + strings.ReplaceAll(field, ".", ",") + "}")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ persistable.Collection = (*Collection)(nil)
