package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/pipeline"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

// JournalService orchestrates journal entry use cases. Every write to an
// entry's text re-runs enrichment synchronously so the caller sees the
// refreshed AI fields; enrichment failure is logged and never fails the
// write itself.
type JournalService struct {
	st         store.Store
	idx        vectorindex.Index
	summarizer *pipeline.Summarizer
	namespace  string
	log        zerolog.Logger
}

func NewJournalService(st store.Store, idx vectorindex.Index, summarizer *pipeline.Summarizer, namespace string, log zerolog.Logger) *JournalService {
	if namespace == "" {
		namespace = "default"
	}
	return &JournalService{
		st:         st,
		idx:        idx,
		summarizer: summarizer,
		namespace:  namespace,
		log:        log.With().Str("component", "journal-service").Logger(),
	}
}

func (s *JournalService) CreateEntry(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error) {
	created, err := s.st.Entries().Create(ctx, e)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, created), nil
}

func (s *JournalService) UpdateEntry(ctx context.Context, userID, entryID, title, content string) (*model.JournalEntry, error) {
	updated, err := s.st.Entries().UpdateContent(ctx, userID, entryID, title, content)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, updated), nil
}

func (s *JournalService) AddLog(ctx context.Context, userID, entryID string, log model.JournalLog) (*model.JournalEntry, error) {
	updated, err := s.st.Entries().AddLog(ctx, userID, entryID, log)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, updated), nil
}

func (s *JournalService) UpdateLog(ctx context.Context, userID, entryID, logID, content string) (*model.JournalEntry, error) {
	updated, err := s.st.Entries().UpdateLog(ctx, userID, entryID, logID, content)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, updated), nil
}

func (s *JournalService) DeleteLog(ctx context.Context, userID, entryID, logID string) (*model.JournalEntry, error) {
	updated, err := s.st.Entries().DeleteLog(ctx, userID, entryID, logID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, updated), nil
}

func (s *JournalService) GetEntry(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	return s.st.Entries().GetByID(ctx, userID, entryID)
}

func (s *JournalService) ListEntries(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	return s.st.Entries().List(ctx, userID)
}

// DeleteEntry removes the entry and synchronously propagates a
// hard-delete to its vector-index record.
func (s *JournalService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	if err := s.st.Entries().Delete(ctx, userID, entryID); err != nil {
		return err
	}
	if s.idx != nil {
		return s.idx.DeleteByID(ctx, s.namespace, entryID)
	}
	return nil
}

// enrich runs the summarization pipeline and returns the refreshed
// entry. Best-effort: the base entry must survive any enrichment
// failure, so errors end in the log, not the caller.
func (s *JournalService) enrich(ctx context.Context, entry *model.JournalEntry) *model.JournalEntry {
	if s.summarizer == nil {
		return entry
	}
	_, err := s.summarizer.Invoke(ctx, pipeline.SummarizeInput{
		Type:    pipeline.TypeJournal,
		UserID:  entry.UserID,
		EntryID: entry.EntryID,
		Title:   entry.Title,
		Content: entry.AnalysisText(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("entryId", entry.EntryID).Msg("entry enrichment failed; returning un-enriched entry")
		return entry
	}
	refreshed, err := s.st.Entries().GetByID(ctx, entry.UserID, entry.EntryID)
	if err != nil {
		s.log.Warn().Err(err).Str("entryId", entry.EntryID).Msg("entry reload after enrichment failed")
		return entry
	}
	return refreshed
}
