// Package session abstracts the connection a remote collection writes
// through. Sessions are scoped to a context; Atomic runs a callback in a
// transaction and nests as savepoints.
package session

import (
	"context"
)

type Callback func(Session) error

type Session interface {
	Context() context.Context
	Atomic(Callback) error
}

type Pool interface {
	Session(context.Context, Callback) error
}

type Result interface {
	RowsAffected() (int64, error)
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type Row interface {
	Scan(dest ...any) error
}

// Conn runs SQL with ? placeholders already rebound by the caller.
type Conn interface {
	Exec(query string, args ...any) (Result, error)
	Query(query string, args ...any) (Rows, error)
	QueryRow(query string, args ...any) Row
}

// SQLSession is a Session backed by a relational connection.
type SQLSession interface {
	Session
	Conn() Conn
}

func AsSQL(s Session) (SQLSession, bool) {
	sqls, ok := s.(SQLSession)
	return sqls, ok
}
