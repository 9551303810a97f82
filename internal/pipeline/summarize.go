package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/embeddings"
	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/retry"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

// SummarizeType selects the pipeline branch.
type SummarizeType string

const (
	TypeJournal SummarizeType = "journal"
	TypeChat    SummarizeType = "chat"
)

// SummarizeInput is one unit of authored text to turn into structured
// memory. EntryID is required for the journal branch and ignored for
// chat.
type SummarizeInput struct {
	Type    SummarizeType
	UserID  string
	EntryID string
	Title   string
	Content string
}

// SummarizeResult carries the branch outputs. SummaryData is set for
// journal inputs; ImportanceData (and BulletsData when important) for
// chat inputs. Upserted reports whether a vector-index write happened.
type SummarizeResult struct {
	SummaryData    *model.SummaryResult
	ImportanceData *model.ChatImportance
	BulletsData    *model.ChatBullets
	Upserted       bool
}

// SummarizerConfig tunes namespacing and per-call timeouts.
type SummarizerConfig struct {
	Namespace       string
	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration
	VectorTimeout   time.Duration
}

func (c *SummarizerConfig) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "default"
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

// Summarizer converts authored text into structured, indexed memory.
// Each Invoke is a pure function of its input; no state is carried
// between invocations.
type Summarizer struct {
	llm llm.Client
	emb embeddings.Provider
	idx vectorindex.Index
	st  store.Store
	cfg SummarizerConfig
	log zerolog.Logger

	// now is swappable for deterministic chat record ids in tests.
	now func() time.Time
}

func NewSummarizer(client llm.Client, emb embeddings.Provider, idx vectorindex.Index, st store.Store, cfg SummarizerConfig, log zerolog.Logger) *Summarizer {
	cfg.applyDefaults()
	return &Summarizer{
		llm: client,
		emb: emb,
		idx: idx,
		st:  st,
		cfg: cfg,
		log: log.With().Str("component", "summarizer").Logger(),
		now: time.Now,
	}
}

// Invoke runs the branch selected by in.Type. Input validation happens
// before any external call.
func (s *Summarizer) Invoke(ctx context.Context, in SummarizeInput) (*SummarizeResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", model.ErrValidation)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", model.ErrValidation)
	}

	switch in.Type {
	case TypeJournal:
		if in.EntryID == "" {
			return nil, fmt.Errorf("%w: entryId is required for journal summarization", model.ErrValidation)
		}
		return s.invokeJournal(ctx, in)
	case TypeChat:
		return s.invokeChat(ctx, in)
	default:
		return nil, fmt.Errorf("%w: unknown summarize type %q", model.ErrValidation, in.Type)
	}
}

// invokeJournal is the unconditional branch: summarize, embed, upsert,
// persist.
func (s *Summarizer) invokeJournal(ctx context.Context, in SummarizeInput) (*SummarizeResult, error) {
	text, err := s.complete(ctx, summarizeSystem, summarizeUser(in.Content))
	if err != nil {
		return nil, fmt.Errorf("summarize journal: %w", err)
	}
	sum, err := ParseSummaryResult(text)
	if err != nil {
		s.log.Warn().Err(err).Str("entryId", in.EntryID).Str("rawOutput", text).Msg("journal summary rejected")
		return nil, err
	}

	res := &SummarizeResult{SummaryData: sum}

	// Indexing degrades gracefully: a summary with no bullets is still
	// persisted, it just cannot be retrieved by vector search.
	if bulletText := strings.Join(sum.Bullets, " "); bulletText != "" {
		vec, err := s.embed(ctx, bulletText)
		if err != nil {
			return nil, fmt.Errorf("embed bullets: %w", err)
		}
		rec := vectorindex.Record{
			ID:        in.EntryID,
			Namespace: s.cfg.Namespace,
			Embedding: vec,
			Metadata: map[string]interface{}{
				"userId":    in.UserID,
				"entryId":   in.EntryID,
				"date":      s.now().UTC().Format(time.RFC3339),
				"title":     in.Title,
				"summary":   sum.Summary,
				"bullets":   sum.Bullets,
				"tags":      sum.Tags,
				"sentiment": sum.Sentiment,
				"intent":    sum.Intent,
				"type":      "journal",
			},
		}
		if err := s.upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("upsert journal vector: %w", err)
		}
		res.Upserted = true
	}

	if err := s.persistSummary(ctx, in.UserID, in.EntryID, sum); err != nil {
		return nil, fmt.Errorf("persist journal summary: %w", err)
	}
	return res, nil
}

// persistSummary reloads the entry, verifies its timestamps, and writes
// only the derived fields back. CreationTime and CreatedForDate are
// never part of the update.
func (s *Summarizer) persistSummary(ctx context.Context, userID, entryID string, sum *model.SummaryResult) error {
	entry, err := s.st.Entries().GetByID(ctx, userID, entryID)
	if err != nil {
		return err
	}
	originalCreated := entry.CreationTime
	originalFor := entry.CreatedForDate

	if err := s.st.Entries().ApplySummary(ctx, userID, entryID, sum); err != nil {
		return err
	}

	// Guard against timestamp drift from the reload/save cycle.
	after, err := s.st.Entries().GetByID(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if !after.CreationTime.Equal(originalCreated) || !after.CreatedForDate.Equal(originalFor) {
		s.log.Error().
			Str("entryId", entryID).
			Time("before", originalCreated).
			Time("after", after.CreationTime).
			Msg("timestamp drift detected after enrichment")
		return fmt.Errorf("enrichment mutated entry timestamps")
	}
	return nil
}

// invokeChat is the conditional branch: classify, then (only when
// important) distill, embed and index.
func (s *Summarizer) invokeChat(ctx context.Context, in SummarizeInput) (*SummarizeResult, error) {
	text, err := s.complete(ctx, importanceSystem, importanceUser(in.Content))
	if err != nil {
		return nil, fmt.Errorf("classify chat importance: %w", err)
	}
	imp, err := ParseChatImportance(text)
	if err != nil {
		s.log.Warn().Err(err).Str("rawOutput", text).Msg("importance classification rejected")
		return nil, err
	}

	res := &SummarizeResult{ImportanceData: imp}
	if !imp.IsImportant {
		// Unimportant turns write nothing, anywhere.
		return res, nil
	}

	btext, err := s.complete(ctx, bulletsSystem, bulletsUser(in.Content))
	if err != nil {
		return nil, fmt.Errorf("extract chat bullets: %w", err)
	}
	bullets, err := ParseChatBullets(btext)
	if err != nil {
		s.log.Warn().Err(err).Str("rawOutput", btext).Msg("chat bullets rejected")
		return nil, err
	}
	res.BulletsData = bullets

	bulletText := strings.Join(bullets.Bullets, " ")
	if bulletText == "" {
		return res, nil
	}
	vec, err := s.embed(ctx, bulletText)
	if err != nil {
		return nil, fmt.Errorf("embed bullets: %w", err)
	}

	rec := vectorindex.Record{
		ID:        fmt.Sprintf("chat_%s_%d", in.UserID, s.now().UnixMilli()),
		Namespace: s.cfg.Namespace,
		Embedding: vec,
		Metadata: map[string]interface{}{
			"userId":     in.UserID,
			"date":       s.now().UTC().Format(time.RFC3339),
			"content":    in.Content,
			"bullets":    bullets.Bullets,
			"importance": imp.Reason,
			"type":       "chat",
		},
	}
	if err := s.upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("upsert chat vector: %w", err)
	}
	res.Upserted = true
	return res, nil
}

func (s *Summarizer) complete(ctx context.Context, system, user string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()
	return s.llm.Complete(cctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	})
}

func (s *Summarizer) embed(ctx context.Context, text string) ([]float32, error) {
	ectx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	return s.emb.Embed(ectx, text)
}

// upsert writes the record with a short retry. Safe because upserts are
// idempotent overwrites by id.
func (s *Summarizer) upsert(ctx context.Context, rec vectorindex.Record) error {
	return retry.Do(ctx, retry.Config{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond}, func() error {
		vctx, cancel := context.WithTimeout(ctx, s.cfg.VectorTimeout)
		defer cancel()
		return s.idx.Upsert(vctx, rec)
	})
}
