package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/pipeline"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/store/sqlite"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

type stubLLM struct {
	responses []string
	calls     [][]llm.Message
	err       error
}

func (s *stubLLM) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	s.calls = append(s.calls, msgs)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.calls) - 1
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return s.responses[len(s.responses)-1], nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "services_test.db"))
	require.NoError(t, err)
	return st
}

const summaryJSON = `{"summary":"A good day","bullets":["one"],"mood":"calm","tags":["life"],"sentiment":"positive","intent":"reflection"}`

func TestJournalService_CreateEnriches(t *testing.T) {
	st := testStore(t)
	idx := vectorindex.NewInMemoryIndex()
	client := &stubLLM{responses: []string{summaryJSON}}
	summarizer := pipeline.NewSummarizer(client, stubEmbedder{}, idx, st, pipeline.SummarizerConfig{}, zerolog.Nop())
	svc := NewJournalService(st, idx, summarizer, "default", zerolog.Nop())

	out, err := svc.CreateEntry(context.Background(), &model.JournalEntry{
		UserID: "alice", Title: "t", Content: "went well",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Summary)
	assert.Equal(t, "A good day", *out.Summary)
	assert.Equal(t, 1, idx.Len())
}

func TestJournalService_EnrichmentFailureIsNonFatal(t *testing.T) {
	st := testStore(t)
	idx := vectorindex.NewInMemoryIndex()
	client := &stubLLM{err: errors.New("llm unavailable")}
	summarizer := pipeline.NewSummarizer(client, stubEmbedder{}, idx, st, pipeline.SummarizerConfig{}, zerolog.Nop())
	svc := NewJournalService(st, idx, summarizer, "default", zerolog.Nop())

	out, err := svc.CreateEntry(context.Background(), &model.JournalEntry{
		UserID: "alice", Title: "t", Content: "went well",
	})
	require.NoError(t, err)
	assert.Nil(t, out.Summary)

	// The base entry still landed in the store.
	got, err := st.Entries().GetByID(context.Background(), "alice", out.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "went well", got.Content)
	assert.Equal(t, 0, idx.Len())
}

func TestJournalService_DeleteCascadesToIndex(t *testing.T) {
	st := testStore(t)
	idx := vectorindex.NewInMemoryIndex()
	client := &stubLLM{responses: []string{summaryJSON}}
	summarizer := pipeline.NewSummarizer(client, stubEmbedder{}, idx, st, pipeline.SummarizerConfig{}, zerolog.Nop())
	svc := NewJournalService(st, idx, summarizer, "default", zerolog.Nop())

	out, err := svc.CreateEntry(context.Background(), &model.JournalEntry{UserID: "alice", Title: "t", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	require.NoError(t, svc.DeleteEntry(context.Background(), "alice", out.EntryID))
	assert.Equal(t, 0, idx.Len())
	_, err = st.Entries().GetByID(context.Background(), "alice", out.EntryID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestChatService_SessionTitles(t *testing.T) {
	st := testStore(t)
	idx := vectorindex.NewInMemoryIndex()
	client := &stubLLM{responses: []string{"an answer"}}
	pipe := pipeline.NewChatPipeline(client, stubEmbedder{}, idx, st, nil, pipeline.ChatConfig{}, zerolog.Nop())
	svc := NewChatService(st, pipe, zerolog.Nop())

	longMsg := strings.Repeat("asking about everything ", 5)
	out, err := svc.StartSession(context.Background(), "alice", longMsg, nil)
	require.NoError(t, err)
	assert.Len(t, []rune(out.Session.Title), 40)
	assert.Equal(t, longMsg[:40], out.Session.Title)

	// Pinned sessions take the entry's title.
	entry, err := st.Entries().Create(context.Background(), &model.JournalEntry{
		UserID: "alice", Title: "Trip to the coast", Content: "c",
	})
	require.NoError(t, err)
	out, err = svc.StartSession(context.Background(), "alice", "tell me about this", &entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "Trip to the coast", out.Session.Title)
	require.NotNil(t, out.Session.EntryID)
}

func TestChatService_ContinueReplaysHistory(t *testing.T) {
	st := testStore(t)
	idx := vectorindex.NewInMemoryIndex()
	client := &stubLLM{responses: []string{"first answer", "second answer"}}
	pipe := pipeline.NewChatPipeline(client, stubEmbedder{}, idx, st, nil, pipeline.ChatConfig{}, zerolog.Nop())
	svc := NewChatService(st, pipe, zerolog.Nop())

	first, err := svc.StartSession(context.Background(), "alice", "hello there", nil)
	require.NoError(t, err)
	require.Len(t, first.Session.Messages, 2)

	second, err := svc.ContinueSession(context.Background(), "alice", first.Session.SessionID, "tell me more")
	require.NoError(t, err)
	assert.Equal(t, "second answer", second.Answer)
	require.Len(t, second.Session.Messages, 4)

	// Persisted transcript matches.
	got, err := st.Sessions().GetByID(context.Background(), "alice", first.Session.SessionID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, model.RoleUser, got.Messages[2].Role)
	assert.Equal(t, "tell me more", got.Messages[2].Content)
	assert.Equal(t, model.RoleAI, got.Messages[3].Role)

	// The prior user turn was replayed into the second generation call.
	lastCall := client.calls[len(client.calls)-1]
	var sawHistory bool
	for _, m := range lastCall {
		if m.Role == llm.RoleUser && m.Content == "hello there" {
			sawHistory = true
		}
	}
	assert.True(t, sawHistory, "expected prior user turn in replayed history")
}

func TestAccountService_DeleteUserData(t *testing.T) {
	st := testStore(t)
	idx := vectorindex.NewInMemoryIndex()
	svc := NewAccountService(st, idx, "default", zerolog.Nop())
	ctx := context.Background()

	_, err := st.Entries().Create(ctx, &model.JournalEntry{UserID: "alice", Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = st.Sessions().Create(ctx, &model.ChatSession{UserID: "alice", Title: "s"})
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, vectorindex.Record{
		ID: "v1", Namespace: "default", Embedding: []float32{1},
		Metadata: map[string]interface{}{"userId": "alice"},
	}))
	require.NoError(t, idx.Upsert(ctx, vectorindex.Record{
		ID: "v2", Namespace: "default", Embedding: []float32{1},
		Metadata: map[string]interface{}{"userId": "bob"},
	}))

	require.NoError(t, svc.DeleteUserData(ctx, "alice"))

	entries, err := st.Entries().List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
	sessions, err := st.Sessions().List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Equal(t, 1, idx.Len())
}
