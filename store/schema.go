package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// EnsureSchema creates the sqlite tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			creator TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			edited_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			body TEXT NOT NULL,
			creator TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			edited_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_name ON channels(name)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_channel_time ON messages(channel_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "schema exec failed")
		}
	}
	return nil
}
