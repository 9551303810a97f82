package model

import (
	"strings"
	"time"
)

// JournalLog is a short addendum appended to an entry after the fact.
type JournalLog struct {
	LogID        string    `json:"logId"`
	Content      string    `json:"content"`
	CreationTime time.Time `json:"creationTime"`
}

// JournalEntry is one authored journal record. The AI-derived fields
// (Mood, Summary, Sentiment, Intent, Tags) are nil until enrichment
// completes and are fully overwritten on every re-summarization.
type JournalEntry struct {
	EntryID        string       `json:"entryId"`
	UserID         string       `json:"userId"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	Logs           []JournalLog `json:"logs,omitempty"`
	CreatedForDate time.Time    `json:"createdForDate"`
	CreationTime   time.Time    `json:"creationTime"`
	Mood           *string      `json:"mood,omitempty"`
	Summary        *string      `json:"summary,omitempty"`
	Sentiment      *string      `json:"sentiment,omitempty"`
	Intent         *string      `json:"intent,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
}

// AnalysisText returns the canonical text the summarization pipeline
// analyzes: the entry content followed by any log contents.
func (e *JournalEntry) AnalysisText() string {
	if len(e.Logs) == 0 {
		return e.Content
	}
	parts := make([]string, 0, len(e.Logs)+1)
	parts = append(parts, e.Content)
	for _, l := range e.Logs {
		if l.Content != "" {
			parts = append(parts, l.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// Message roles within a chat session. The stored role for model output
// is "ai"; the wire role sent to the LLM is "assistant".
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// ChatMessage is one turn half inside a session's append-only transcript.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession groups the turns of one conversation. EntryID non-nil means
// the session is pinned to a single journal entry; nil means global chat
// over the user's indexed memory.
type ChatSession struct {
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId"`
	EntryID      *string       `json:"entryId,omitempty"`
	Title        string        `json:"title"`
	Messages     []ChatMessage `json:"messages"`
	CreationTime time.Time     `json:"creationTime"`
	Closed       bool          `json:"closed"`
	Summary      *string       `json:"summary,omitempty"`
}

// SummaryResult is the schema-validated structured output of the journal
// summarization step. Bullets carries 1-10 items, Tags 1-8.
type SummaryResult struct {
	Summary   string   `json:"summary"`
	Bullets   []string `json:"bullets"`
	Mood      string   `json:"mood"`
	Tags      []string `json:"tags"`
	Sentiment string   `json:"sentiment"`
	Intent    string   `json:"intent"`
}

// ChatImportance gates whether a chat turn is worth indexing.
type ChatImportance struct {
	IsImportant bool   `json:"isImportant"`
	Reason      string `json:"reason"`
}

// ChatBullets distills an important chat message. 1-5 items.
type ChatBullets struct {
	Bullets []string `json:"bullets"`
}
