package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yabatech/campusbot/internal/db"
)

// SQLiteStore keeps histories in the chat_sessions and conversation_turns
// tables.
type SQLiteStore struct {
	db  db.DBTX
	uow db.UnitOfWork
	now func() time.Time
}

// NewSQLiteStore creates a store on an opened and migrated database.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:  database,
		uow: db.NewSQLiteUnitOfWork(database),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (History, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_text, bot_text FROM conversation_turns WHERE session_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("loading turns for session: %w", err)
	}
	defer rows.Close()

	h := History{}
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.User, &t.Bot); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		h = append(h, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return h, nil
}

// Save replaces every turn of the session inside one transaction. Rows
// are upserted by position so answered_at keeps the time a turn was first
// answered.
func (s *SQLiteStore) Save(ctx context.Context, key string, h History) error {
	now := s.now().Format(time.RFC3339)
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_sessions (session_key, created_at, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(session_key) DO UPDATE SET updated_at = excluded.updated_at`,
			key, now, now); err != nil {
			return fmt.Errorf("upserting session: %w", err)
		}

		for i, t := range h {
			var answeredAt any
			if t.Answered() {
				answeredAt = now
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO conversation_turns (session_key, position, user_text, bot_text, answered_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(session_key, position) DO UPDATE SET
					user_text   = excluded.user_text,
					bot_text    = excluded.bot_text,
					answered_at = COALESCE(conversation_turns.answered_at, excluded.answered_at)`,
				key, i, t.User, t.Bot, answeredAt); err != nil {
				return fmt.Errorf("upserting turn %d: %w", i, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM conversation_turns WHERE session_key = ? AND position >= ?`, key, len(h)); err != nil {
			return fmt.Errorf("trimming turns: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
