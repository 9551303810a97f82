package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/pipeline"
	"github.com/lumora-ai/lumora-server/internal/store"
)

// historyTurns is how many trailing session messages are replayed into
// the pipeline per turn.
const historyTurns = 6

// sessionTitleLimit caps auto-generated session titles.
const sessionTitleLimit = 40

// ChatService manages chat sessions and drives the chat pipeline.
// Exactly two messages (user, ai) are appended per turn.
type ChatService struct {
	st   store.Store
	chat *pipeline.ChatPipeline
	log  zerolog.Logger
}

func NewChatService(st store.Store, chat *pipeline.ChatPipeline, log zerolog.Logger) *ChatService {
	return &ChatService{st: st, chat: chat, log: log.With().Str("component", "chat-service").Logger()}
}

// TurnResult is one completed chat turn.
type TurnResult struct {
	Session *model.ChatSession
	Answer  string
	Matches interface{}
}

// StartSession runs the first turn and persists a new session. entryID
// non-nil pins the session to one journal entry.
func (s *ChatService) StartSession(ctx context.Context, userID, message string, entryID *string) (*TurnResult, error) {
	in := pipeline.ChatInput{UserID: userID, Query: message}
	if entryID != nil {
		in.EntryID = *entryID
	}
	out, err := s.chat.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}

	title := truncate(message, sessionTitleLimit)
	if out.EntryTitle != "" {
		title = out.EntryTitle
	}

	now := time.Now().UTC()
	session, err := s.st.Sessions().Create(ctx, &model.ChatSession{
		UserID:  userID,
		EntryID: entryID,
		Title:   title,
		Messages: []model.ChatMessage{
			{Role: model.RoleUser, Content: message, Timestamp: now},
			{Role: model.RoleAI, Content: out.Answer, Timestamp: now},
		},
	})
	if err != nil {
		return nil, err
	}
	return &TurnResult{Session: session, Answer: out.Answer, Matches: out.Matches}, nil
}

// ContinueSession runs one more turn of an existing session, replaying
// the trailing history for conversational continuity.
func (s *ChatService) ContinueSession(ctx context.Context, userID, sessionID, message string) (*TurnResult, error) {
	session, err := s.st.Sessions().GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	in := pipeline.ChatInput{
		UserID:    userID,
		SessionID: sessionID,
		Query:     message,
		Messages:  recentHistory(session.Messages, historyTurns),
	}
	if session.EntryID != nil {
		in.EntryID = *session.EntryID
	}
	out, err := s.chat.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMsg := model.ChatMessage{Role: model.RoleUser, Content: message, Timestamp: now}
	aiMsg := model.ChatMessage{Role: model.RoleAI, Content: out.Answer, Timestamp: now}
	if err := s.st.Sessions().AppendTurn(ctx, userID, sessionID, userMsg, aiMsg); err != nil {
		return nil, err
	}
	session.Messages = append(session.Messages, userMsg, aiMsg)
	return &TurnResult{Session: session, Answer: out.Answer, Matches: out.Matches}, nil
}

func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	return s.st.Sessions().GetByID(ctx, userID, sessionID)
}

func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	return s.st.Sessions().List(ctx, userID)
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return s.st.Sessions().Delete(ctx, userID, sessionID)
}

// recentHistory maps the trailing stored messages onto wire roles. The
// stored "ai" role becomes "assistant" on the wire.
func recentHistory(msgs []model.ChatMessage, n int) []llm.Message {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		role := llm.RoleUser
		if m.Role == model.RoleAI {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
