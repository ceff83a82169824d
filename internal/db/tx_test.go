package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yabatech/campusbot/internal/db"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func insertSession(ctx context.Context, tx db.DBTX, key string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO chat_sessions (session_key, created_at, updated_at) VALUES (?, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
		key)
	return err
}

// sessionExists reads through the unit of work since an in-memory database
// is bound to its single connection.
func sessionExists(uow *db.SQLiteUnitOfWork, key string) bool {
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		var got string
		if err := tx.QueryRowContext(ctx, `SELECT session_key FROM chat_sessions WHERE session_key = ?`, key).Scan(&got); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertSession(ctx, tx, "s1")
	})
	require.NoError(t, err)

	assert.True(t, sessionExists(uow, "s1"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertSession(ctx, tx, "s2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	assert.False(t, sessionExists(uow, "s2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertSession(ctx, tx, "s3")
			panic("boom")
		})
	})

	assert.False(t, sessionExists(uow, "s3"), "row should not exist after panic rollback")
}

func TestWithinTx_CascadeDeletesTurns(t *testing.T) {
	uow := openTestUoW(t)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := insertSession(ctx, tx, "s4"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversation_turns (session_key, position, user_text, bot_text) VALUES (?, 0, 'hi', 'hello')`, "s4")
		return err
	})
	require.NoError(t, err)

	var remaining int
	err = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE session_key = ?`, "s4"); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_turns WHERE session_key = ?`, "s4").Scan(&remaining)
	})
	require.NoError(t, err)
	assert.Zero(t, remaining)
}
