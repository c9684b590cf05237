package pgx

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session/result"
)

// Session represents a database session without transaction
type Session struct {
	ctx  context.Context
	conn *pgxpool.Conn
}

func NewSession(ctx context.Context, conn *pgxpool.Conn) *Session {
	return &Session{ctx: ctx, conn: conn}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Conn() session.Conn {
	return &connection{ctx: s.ctx, exec: s.conn}
}

func (s *Session) Atomic(callback session.Callback) error {
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	return runInTx(s.ctx, tx, 0, callback)
}

// TransactionSession runs inside a transaction. Nested Atomic calls open
// savepoints; depth 0 is the outer transaction.
type TransactionSession struct {
	ctx   context.Context
	tx    pgx.Tx
	depth int
}

func (s *TransactionSession) Context() context.Context {
	return s.ctx
}

func (s *TransactionSession) Conn() session.Conn {
	return &connection{ctx: s.ctx, exec: s.tx}
}

func (s *TransactionSession) Depth() int {
	return s.depth
}

func (s *TransactionSession) Atomic(callback session.Callback) error {
	nested, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}
	return runInTx(s.ctx, nested, s.depth+1, callback)
}

func runInTx(ctx context.Context, tx pgx.Tx, depth int, callback session.Callback) error {
	err := callback(&TransactionSession{ctx: ctx, tx: tx, depth: depth})
	if err != nil {
		if txErr := tx.Rollback(ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(ctx); txErr != nil {
		if depth == 0 {
			return errors.Wrap(txErr, "failed to commit transaction")
		}
		return errors.Wrap(txErr, "failed to release savepoint")
	}
	return nil
}

// executor interface for both *pgxpool.Conn and pgx.Tx
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// connection implements session.Conn
type connection struct {
	ctx  context.Context
	exec executor
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	tag, err := c.exec.Exec(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return result.NewResult(tag.RowsAffected()), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	rows, err := c.exec.Query(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	return c.exec.QueryRow(c.ctx, query, args...)
}

// pgx rows close without reporting; the error surfaces through Err.
type rowsAdapter struct {
	pgx.Rows
}

func (r rowsAdapter) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

var (
	_ session.SQLSession = (*Session)(nil)
	_ session.SQLSession = (*TransactionSession)(nil)
	_ session.Pool       = (*SessionPool)(nil)
)
