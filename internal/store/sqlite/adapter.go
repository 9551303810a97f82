package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/store"
)

// sqliteStore implements store.Store on a single SQLite database.
// Logs and messages are stored as JSON columns, mirroring the
// document-shaped records of the original deployment.
type sqliteStore struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at path and ensures the
// schema exists.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires an existing connection (used by factory and tests).
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Entries() store.Entries   { return &entries{db: s.db} }
func (s *sqliteStore) Sessions() store.Sessions { return &sessions{db: s.db} }

// HealthPing reports connectivity.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Entries ---

type entries struct{ db *sql.DB }

func (e *entries) Create(ctx context.Context, m *model.JournalEntry) (*model.JournalEntry, error) {
	out := *m
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
	now := time.Now().UTC()
	if out.CreationTime.IsZero() {
		out.CreationTime = now
	}
	if out.CreatedForDate.IsZero() {
		out.CreatedForDate = out.CreationTime
	}
	logsJSON, err := json.Marshal(out.Logs)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := json.Marshal(out.Tags)
	if err != nil {
		return nil, err
	}
	_, err = e.db.ExecContext(ctx, `
        INSERT INTO journal_entries
            (entry_id, user_id, title, content, logs, created_for_date, creation_time, mood, summary, sentiment, intent, tags)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		out.EntryID, out.UserID, out.Title, out.Content, string(logsJSON),
		out.CreatedForDate.Format(time.RFC3339Nano), out.CreationTime.Format(time.RFC3339Nano),
		out.Mood, out.Summary, out.Sentiment, out.Intent, string(tagsJSON))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *entries) GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT entry_id, user_id, title, content, logs, created_for_date, creation_time, mood, summary, sentiment, intent, tags
        FROM journal_entries WHERE user_id=? AND entry_id=?`, userID, entryID)
	return scanEntry(row)
}

func (e *entries) List(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT entry_id, user_id, title, content, logs, created_for_date, creation_time, mood, summary, sentiment, intent, tags
        FROM journal_entries WHERE user_id=? ORDER BY creation_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (e *entries) UpdateContent(ctx context.Context, userID, entryID, title, content string) (*model.JournalEntry, error) {
	res, err := e.db.ExecContext(ctx, `
        UPDATE journal_entries SET title=?, content=? WHERE user_id=? AND entry_id=?`,
		title, content, userID, entryID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return e.GetByID(ctx, userID, entryID)
}

// ApplySummary overwrites only the derived fields. The timestamp columns
// are deliberately absent from the statement.
func (e *entries) ApplySummary(ctx context.Context, userID, entryID string, sum *model.SummaryResult) error {
	tagsJSON, err := json.Marshal(sum.Tags)
	if err != nil {
		return err
	}
	res, err := e.db.ExecContext(ctx, `
        UPDATE journal_entries SET mood=?, summary=?, sentiment=?, intent=?, tags=?
        WHERE user_id=? AND entry_id=?`,
		sum.Mood, sum.Summary, sum.Sentiment, sum.Intent, string(tagsJSON), userID, entryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (e *entries) AddLog(ctx context.Context, userID, entryID string, log model.JournalLog) (*model.JournalEntry, error) {
	return e.mutateLogs(ctx, userID, entryID, func(logs []model.JournalLog) ([]model.JournalLog, error) {
		if log.LogID == "" {
			log.LogID = uuid.New().String()
		}
		if log.CreationTime.IsZero() {
			log.CreationTime = time.Now().UTC()
		}
		return append(logs, log), nil
	})
}

func (e *entries) UpdateLog(ctx context.Context, userID, entryID, logID, content string) (*model.JournalEntry, error) {
	return e.mutateLogs(ctx, userID, entryID, func(logs []model.JournalLog) ([]model.JournalLog, error) {
		for i := range logs {
			if logs[i].LogID == logID {
				logs[i].Content = content
				return logs, nil
			}
		}
		return nil, model.ErrNotFound
	})
}

func (e *entries) DeleteLog(ctx context.Context, userID, entryID, logID string) (*model.JournalEntry, error) {
	return e.mutateLogs(ctx, userID, entryID, func(logs []model.JournalLog) ([]model.JournalLog, error) {
		for i := range logs {
			if logs[i].LogID == logID {
				return append(logs[:i], logs[i+1:]...), nil
			}
		}
		return nil, model.ErrNotFound
	})
}

// mutateLogs rewrites the logs JSON column inside a transaction so
// concurrent log edits cannot lose writes.
func (e *entries) mutateLogs(ctx context.Context, userID, entryID string, fn func([]model.JournalLog) ([]model.JournalLog, error)) (*model.JournalEntry, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var logsJSON string
	row := tx.QueryRowContext(ctx, `SELECT logs FROM journal_entries WHERE user_id=? AND entry_id=?`, userID, entryID)
	if err := row.Scan(&logsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	var logs []model.JournalLog
	if logsJSON != "" {
		if err := json.Unmarshal([]byte(logsJSON), &logs); err != nil {
			return nil, fmt.Errorf("decode logs: %w", err)
		}
	}
	logs, err = fn(logs)
	if err != nil {
		return nil, err
	}
	updated, err := json.Marshal(logs)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE journal_entries SET logs=? WHERE user_id=? AND entry_id=?`, string(updated), userID, entryID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e.GetByID(ctx, userID, entryID)
}

func (e *entries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE user_id=? AND entry_id=?`, userID, entryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (e *entries) DeleteByUser(ctx context.Context, userID string) error {
	_, err := e.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE user_id=?`, userID)
	return err
}

// --- Sessions ---

type sessions struct{ db *sql.DB }

func (s *sessions) Create(ctx context.Context, m *model.ChatSession) (*model.ChatSession, error) {
	out := *m
	if out.SessionID == "" {
		out.SessionID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	msgsJSON, err := json.Marshal(out.Messages)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO chat_sessions (session_id, user_id, entry_id, title, messages, creation_time, closed, summary)
        VALUES (?,?,?,?,?,?,?,?)`,
		out.SessionID, out.UserID, out.EntryID, out.Title, string(msgsJSON),
		out.CreationTime.Format(time.RFC3339Nano), out.Closed, out.Summary)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *sessions) GetByID(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT session_id, user_id, entry_id, title, messages, creation_time, closed, summary
        FROM chat_sessions WHERE user_id=? AND session_id=?`, userID, sessionID)
	return scanSession(row)
}

func (s *sessions) List(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, user_id, entry_id, title, messages, creation_time, closed, summary
        FROM chat_sessions WHERE user_id=? ORDER BY creation_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ChatSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *sessions) AppendTurn(ctx context.Context, userID, sessionID string, userMsg, aiMsg model.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var msgsJSON string
	row := tx.QueryRowContext(ctx, `SELECT messages FROM chat_sessions WHERE user_id=? AND session_id=?`, userID, sessionID)
	if err := row.Scan(&msgsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return err
	}
	var msgs []model.ChatMessage
	if msgsJSON != "" {
		if err := json.Unmarshal([]byte(msgsJSON), &msgs); err != nil {
			return fmt.Errorf("decode messages: %w", err)
		}
	}
	msgs = append(msgs, userMsg, aiMsg)
	updated, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE chat_sessions SET messages=? WHERE user_id=? AND session_id=?`, string(updated), userID, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sessions) Delete(ctx context.Context, userID, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE user_id=? AND session_id=?`, userID, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *sessions) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE user_id=?`, userID)
	return err
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.JournalEntry, error) {
	var out model.JournalEntry
	var logsJSON, tagsJSON, forDate, created string
	err := row.Scan(&out.EntryID, &out.UserID, &out.Title, &out.Content, &logsJSON,
		&forDate, &created, &out.Mood, &out.Summary, &out.Sentiment, &out.Intent, &tagsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if out.CreatedForDate, err = time.Parse(time.RFC3339Nano, forDate); err != nil {
		return nil, fmt.Errorf("parse created_for_date: %w", err)
	}
	if out.CreationTime, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse creation_time: %w", err)
	}
	if logsJSON != "" {
		if err := json.Unmarshal([]byte(logsJSON), &out.Logs); err != nil {
			return nil, fmt.Errorf("decode logs: %w", err)
		}
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &out.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &out, nil
}

func scanSession(row rowScanner) (*model.ChatSession, error) {
	var out model.ChatSession
	var msgsJSON, created string
	err := row.Scan(&out.SessionID, &out.UserID, &out.EntryID, &out.Title, &msgsJSON,
		&created, &out.Closed, &out.Summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if out.CreationTime, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse creation_time: %w", err)
	}
	if msgsJSON != "" {
		if err := json.Unmarshal([]byte(msgsJSON), &out.Messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
	}
	return &out, nil
}
