package store

import (
	"context"

	"github.com/lumora-ai/lumora-server/internal/model"
)

// Store exposes persistence operations required by services and the
// pipelines. Implementations live under internal/store/<driver>/.
type Store interface {
	Entries() Entries
	Sessions() Sessions
}

// Entries persists journal entries. Mutations of the derived AI fields
// go through ApplySummary, which must leave CreationTime and
// CreatedForDate untouched.
type Entries interface {
	Create(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error)
	GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error)
	List(ctx context.Context, userID string) ([]*model.JournalEntry, error)
	UpdateContent(ctx context.Context, userID, entryID, title, content string) (*model.JournalEntry, error)
	ApplySummary(ctx context.Context, userID, entryID string, sum *model.SummaryResult) error
	AddLog(ctx context.Context, userID, entryID string, log model.JournalLog) (*model.JournalEntry, error)
	UpdateLog(ctx context.Context, userID, entryID, logID, content string) (*model.JournalEntry, error)
	DeleteLog(ctx context.Context, userID, entryID, logID string) (*model.JournalEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// Sessions persists chat sessions. AppendTurn appends exactly one user
// message and one ai message, in order.
type Sessions interface {
	Create(ctx context.Context, s *model.ChatSession) (*model.ChatSession, error)
	GetByID(ctx context.Context, userID, sessionID string) (*model.ChatSession, error)
	List(ctx context.Context, userID string) ([]*model.ChatSession, error)
	AppendTurn(ctx context.Context, userID, sessionID string, userMsg, aiMsg model.ChatMessage) error
	Delete(ctx context.Context, userID, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
