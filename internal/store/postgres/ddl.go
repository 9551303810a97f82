package postgres

import (
	"context"
	"database/sql"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS journal_entries (
    entry_id         TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    title            TEXT NOT NULL,
    content          TEXT NOT NULL,
    logs             JSONB NOT NULL DEFAULT '[]',
    created_for_date TIMESTAMPTZ NOT NULL,
    creation_time    TIMESTAMPTZ NOT NULL,
    mood             TEXT,
    summary          TEXT,
    sentiment        TEXT,
    intent           TEXT,
    tags             JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries(user_id, creation_time);

CREATE TABLE IF NOT EXISTS chat_sessions (
    session_id    TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    entry_id      TEXT,
    title         TEXT NOT NULL DEFAULT '',
    messages      JSONB NOT NULL DEFAULT '[]',
    creation_time TIMESTAMPTZ NOT NULL,
    closed        BOOLEAN NOT NULL DEFAULT FALSE,
    summary       TEXT
);
CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id, creation_time);
`

// EnsureSchema creates tables when absent. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
