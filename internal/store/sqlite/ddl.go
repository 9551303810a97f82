package sqlite

import "database/sql"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS journal_entries (
    entry_id         TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    title            TEXT NOT NULL,
    content          TEXT NOT NULL,
    logs             TEXT NOT NULL DEFAULT '[]',
    created_for_date TEXT NOT NULL,
    creation_time    TEXT NOT NULL,
    mood             TEXT,
    summary          TEXT,
    sentiment        TEXT,
    intent           TEXT,
    tags             TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries(user_id, creation_time);

CREATE TABLE IF NOT EXISTS chat_sessions (
    session_id    TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    entry_id      TEXT,
    title         TEXT NOT NULL DEFAULT '',
    messages      TEXT NOT NULL DEFAULT '[]',
    creation_time TEXT NOT NULL,
    closed        INTEGER NOT NULL DEFAULT 0,
    summary       TEXT
);
CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id, creation_time);
`

// EnsureSchema creates tables when absent. Idempotent.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schemaDDL)
	return err
}
