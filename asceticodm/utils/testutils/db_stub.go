package testutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session/result"
)

// Statement is one SQL call recorded by SessionStub.
type Statement struct {
	Query  string
	Params []any
}

// SessionStub records the SQL it is asked to run and answers queries from
// Rows. Exec reports RowsAffected rows.
func NewSessionStub(rows *RowsStub) *SessionStub {
	stub := &SessionStub{Rows: rows, RowsAffected: 1}
	stub.conn = &connectionStub{session: stub}
	return stub
}

type SessionStub struct {
	Rows         *RowsStub
	RowsAffected int64
	ExecErr      error
	ActualQuery  string
	ActualParams []any
	Statements   []Statement
	AtomicDepth  int
	conn         *connectionStub
}

func (s *SessionStub) Context() context.Context {
	return context.Background()
}

func (s *SessionStub) Atomic(callback session.Callback) error {
	s.AtomicDepth++
	defer func() { s.AtomicDepth-- }()
	return callback(s)
}

func (s *SessionStub) Conn() session.Conn {
	return s.conn
}

func (s *SessionStub) record(query string, args []any) {
	s.ActualQuery = query
	s.ActualParams = args
	s.Statements = append(s.Statements, Statement{Query: query, Params: args})
}

type connectionStub struct {
	session *SessionStub
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	c.session.record(query, args)
	if c.session.ExecErr != nil {
		return nil, c.session.ExecErr
	}
	return result.NewResult(c.session.RowsAffected), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	c.session.record(query, args)
	if c.session.Rows == nil {
		return NewRowsStub(), nil
	}
	return c.session.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	c.session.record(query, args)
	return &RowStub{rows: c.session.Rows}
}

func NewRowsStub(rows ...[]any) *RowsStub {
	return &RowsStub{rows: rows, idx: -1}
}

type RowsStub struct {
	rows   [][]any
	idx    int
	Closed bool
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("no current row")
	}
	row := r.rows[r.idx]
	if len(row) != len(dest) {
		return fmt.Errorf("row has %d columns, scanning into %d", len(row), len(dest))
	}
	for i, val := range row {
		switch d := dest[i].(type) {
		case *int64:
			v, ok := val.(int64)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into *int64", i, val)
			}
			*d = v
		case *string:
			v, ok := val.(string)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into *string", i, val)
			}
			*d = v
		case *[]byte:
			switch v := val.(type) {
			case []byte:
				*d = v
			case string:
				*d = []byte(v)
			default:
				return fmt.Errorf("column %d: cannot scan %T into *[]byte", i, val)
			}
		case *any:
			*d = val
		default:
			return fmt.Errorf("column %d: unsupported scan type %T", i, dest[i])
		}
	}
	return nil
}

type RowStub struct {
	rows *RowsStub
}

func (r *RowStub) Scan(dest ...any) error {
	if r.rows == nil || !r.rows.Next() {
		return errors.New("no rows in result set")
	}
	return r.rows.Scan(dest...)
}
