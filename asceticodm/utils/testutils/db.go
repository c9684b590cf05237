package testutils

import (
	"context"
	"os"
	"testing"

	pgxsession "github.com/krew-solutions/ascetic-odm-go/asceticodm/session/pgx"
)

// DsnEnv names the variable holding a PostgreSQL DSN for integration tests.
const DsnEnv = "ASCETICODM_POSTGRES_DSN"

// NewPgSessionPool connects to the database named by DsnEnv and skips the
// test when it is unset.
func NewPgSessionPool(t testing.TB) *pgxsession.SessionPool {
	t.Helper()
	dsn, ok := os.LookupEnv(DsnEnv)
	if !ok || dsn == "" {
		t.Skipf("%s is not set", DsnEnv)
	}
	pool, err := pgxsession.Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
