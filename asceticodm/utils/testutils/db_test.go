package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/session"
)

func TestNewPgSessionPoolSkipsWithoutDsn(t *testing.T) {
	t.Setenv(DsnEnv, "")

	var pool session.Pool
	ran := t.Run("pool", func(t *testing.T) {
		pool = NewPgSessionPool(t)
	})

	assert.True(t, ran, "a skipped subtest still passes")
	assert.Nil(t, pool)
}

func TestSessionStubRecordsStatements(t *testing.T) {
	stub := NewSessionStub(NewRowsStub([]any{int64(7)}))

	err := stub.Atomic(func(s session.Session) error {
		assert.Equal(t, 1, stub.AtomicDepth)
		conn := s.(session.SQLSession).Conn()
		if _, err := conn.Exec("DELETE FROM t WHERE id = $1", 1); err != nil {
			return err
		}
		var n int64
		return conn.QueryRow("SELECT count(*) FROM t").Scan(&n)
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, stub.AtomicDepth)
	assert.Equal(t, []Statement{
		{Query: "DELETE FROM t WHERE id = $1", Params: []any{1}},
		{Query: "SELECT count(*) FROM t", Params: nil},
	}, stub.Statements)
}
