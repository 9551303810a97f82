package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/embeddings"
	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

// ChatInput is one conversational query. EntryID non-empty pins the
// conversation to a single journal entry; empty means global chat over
// the user's indexed memory. Messages is the caller-truncated recent
// history of the session.
type ChatInput struct {
	UserID    string
	SessionID string
	EntryID   string
	Query     string
	Messages  []llm.Message
}

// ChatOutput is the grounded answer plus, in retrieval mode, the raw
// matches used to assemble the context.
type ChatOutput struct {
	Answer     string
	Matches    []vectorindex.Match
	EntryTitle string
}

// ChatConfig tunes retrieval and generation.
type ChatConfig struct {
	Namespace       string
	TopK            int
	HistoryWindow   int
	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration
	VectorTimeout   time.Duration
}

func (c *ChatConfig) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "default"
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 5
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = 60 * time.Second
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = 15 * time.Second
	}
	if c.VectorTimeout <= 0 {
		c.VectorTimeout = 10 * time.Second
	}
}

// ChatPipeline answers a single query grounded either in one pinned
// entry or in retrieved memory. Each Invoke is stateless; continuity
// across turns lives in the caller-supplied history and the persisted
// session record.
type ChatPipeline struct {
	llm        llm.Client
	emb        embeddings.Provider
	idx        vectorindex.Index
	st         store.Store
	summarizer *Summarizer
	cfg        ChatConfig
	log        zerolog.Logger

	// spawn runs the background chat summarization. Swappable so tests
	// can run it synchronously.
	spawn func(fn func())
}

func NewChatPipeline(client llm.Client, emb embeddings.Provider, idx vectorindex.Index, st store.Store, summarizer *Summarizer, cfg ChatConfig, log zerolog.Logger) *ChatPipeline {
	cfg.applyDefaults()
	return &ChatPipeline{
		llm:        client,
		emb:        emb,
		idx:        idx,
		st:         st,
		summarizer: summarizer,
		cfg:        cfg,
		log:        log.With().Str("component", "chat-pipeline").Logger(),
		spawn:      func(fn func()) { go fn() },
	}
}

// Invoke answers the query. Pinned mode never touches the embedder or
// the index; global mode always retrieves with the userId filter.
func (p *ChatPipeline) Invoke(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", model.ErrValidation)
	}

	out := &ChatOutput{}
	var contextStr string
	var userPrompt string

	if in.EntryID != "" {
		entry, err := p.st.Entries().GetByID(ctx, in.UserID, in.EntryID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, ErrEntryNotFound
			}
			return nil, fmt.Errorf("load pinned entry: %w", err)
		}
		out.EntryTitle = entry.Title
		contextStr = fmt.Sprintf("Entry Title: %s\nEntry Content: %s", entry.Title, entry.Content)
		userPrompt = pinnedUserPrompt(in.Query, contextStr)
	} else {
		ectx, cancel := context.WithTimeout(ctx, p.cfg.EmbedTimeout)
		vec, err := p.emb.Embed(ectx, in.Query)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}

		vctx, vcancel := context.WithTimeout(ctx, p.cfg.VectorTimeout)
		matches, err := p.idx.Query(vctx, vectorindex.Query{
			Namespace: p.cfg.Namespace,
			Embedding: vec,
			TopK:      p.cfg.TopK,
			UserID:    in.UserID,
		})
		vcancel()
		if err != nil {
			return nil, fmt.Errorf("retrieve memory: %w", err)
		}
		out.Matches = matches
		// Zero matches leaves the context empty; generation still runs
		// and produces a generic reply.
		contextStr = renderMatches(matches)
		userPrompt = retrievalUserPrompt(in.Query, contextStr)
	}

	messages := p.buildMessages(in, userPrompt)

	gctx, gcancel := context.WithTimeout(ctx, p.cfg.GenerateTimeout)
	answer, err := p.llm.Complete(gctx, messages)
	gcancel()
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	out.Answer = answer

	p.summarizeInBackground(in)
	return out, nil
}

// buildMessages assembles [persona, last N user-only turns, current
// query+context]. Assistant turns are never replayed.
func (p *ChatPipeline) buildMessages(in ChatInput, userPrompt string) []llm.Message {
	messages := make([]llm.Message, 0, p.cfg.HistoryWindow+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: chatPersona})

	var history []llm.Message
	for _, m := range in.Messages {
		if m.Role == llm.RoleUser && m.Content != "" {
			history = append(history, m)
		}
	}
	if len(history) > p.cfg.HistoryWindow {
		history = history[len(history)-p.cfg.HistoryWindow:]
	}
	messages = append(messages, history...)

	return append(messages, llm.Message{Role: llm.RoleUser, Content: userPrompt})
}

// summarizeInBackground feeds the query into the summarization chat
// branch without blocking the reply. The detached task gets its own
// context and its errors go to the log sink only.
func (p *ChatPipeline) summarizeInBackground(in ChatInput) {
	if p.summarizer == nil {
		return
	}
	userID := in.UserID
	query := in.Query
	p.spawn(func() {
		bctx, cancel := context.WithTimeout(context.Background(), 2*p.cfg.GenerateTimeout)
		defer cancel()
		if _, err := p.summarizer.Invoke(bctx, SummarizeInput{
			Type:    TypeChat,
			UserID:  userID,
			Content: query,
		}); err != nil {
			p.log.Warn().Err(err).Str("userId", userID).Msg("background chat summarization failed")
		}
	})
}

// renderMatches formats retrieval hits as a numbered list in
// index-native relevance order. No re-ranking is performed.
func renderMatches(matches []vectorindex.Match) string {
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range matches {
		date := "Unknown date"
		if raw, ok := m.Metadata["date"].(string); ok && raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				date = t.Format("2006-01-02")
			}
		}
		summary, _ := m.Metadata["summary"].(string)
		if summary == "" {
			summary, _ = m.Metadata["content"].(string)
		}
		line := fmt.Sprintf("%d. [%s] %s", i+1, date, summary)
		if bullets := metadataStrings(m.Metadata, "bullets"); len(bullets) > 0 {
			line += " | " + strings.Join(bullets, " | ")
		}
		b.WriteString(line)
		if i < len(matches)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// metadataStrings reads a []string that may have round-tripped through
// JSON as []interface{}.
func metadataStrings(meta map[string]interface{}, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
