package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chat_sessions (
		session_key TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_turns (
		session_key TEXT NOT NULL REFERENCES chat_sessions(session_key) ON DELETE CASCADE,
		position    INTEGER NOT NULL CHECK(position >= 0),
		user_text   TEXT NOT NULL,
		bot_text    TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (session_key, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at)`,
	// Added after the first release; older databases lack the column.
	`ALTER TABLE conversation_turns ADD COLUMN answered_at TEXT`,
}
