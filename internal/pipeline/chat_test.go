package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

func newTestChatPipeline(t *testing.T, client *scriptedLLM, emb *fakeEmbedder) (*ChatPipeline, store.Store, *vectorindex.InMemoryIndex) {
	t.Helper()
	st := newTestStore(t)
	idx := vectorindex.NewInMemoryIndex()
	p := NewChatPipeline(client, emb, idx, st, nil, ChatConfig{}, zerolog.Nop())
	return p, st, idx
}

func seedVector(t *testing.T, idx *vectorindex.InMemoryIndex, id, userID, summary string, vec []float32) {
	t.Helper()
	err := idx.Upsert(context.Background(), vectorindex.Record{
		ID:        id,
		Namespace: "default",
		Embedding: vec,
		Metadata: map[string]interface{}{
			"userId":  userID,
			"summary": summary,
			"date":    "2025-05-01T10:00:00Z",
			"bullets": []string{"b1"},
			"type":    "journal",
		},
	})
	require.NoError(t, err)
}

func TestChatPipeline_PinnedModeSkipsRetrieval(t *testing.T) {
	client := &scriptedLLM{responses: []string{"You wrote about your run that day."}}
	emb := &fakeEmbedder{}
	p, st, _ := newTestChatPipeline(t, client, emb)

	entry := createEntry(t, st, "alice", "Went for a long run in the rain.")

	out, err := p.Invoke(context.Background(), ChatInput{
		UserID:  "alice",
		EntryID: entry.EntryID,
		Query:   "what did I write here?",
	})
	require.NoError(t, err)
	assert.Equal(t, "You wrote about your run that day.", out.Answer)
	assert.Equal(t, entry.Title, out.EntryTitle)
	assert.Empty(t, out.Matches)

	// Pinned mode must not touch the embedder.
	assert.Equal(t, 0, emb.calls)

	// The prompt carries the entry text, not retrieval context.
	require.Len(t, client.calls, 1)
	last := client.calls[0][len(client.calls[0])-1]
	assert.Contains(t, last.Content, "Entry Title: "+entry.Title)
	assert.Contains(t, last.Content, "Went for a long run in the rain.")
}

func TestChatPipeline_PinnedModeMissingEntry(t *testing.T) {
	p, _, _ := newTestChatPipeline(t, &scriptedLLM{}, &fakeEmbedder{})

	_, err := p.Invoke(context.Background(), ChatInput{
		UserID:  "alice",
		EntryID: "no-such-entry",
		Query:   "hello?",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestChatPipeline_GlobalModeFiltersByUser(t *testing.T) {
	client := &scriptedLLM{responses: []string{"Here is what I remember."}}
	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	p, _, idx := newTestChatPipeline(t, client, emb)

	seedVector(t, idx, "e1", "alice", "alice memory one", []float32{1, 0, 0})
	seedVector(t, idx, "e2", "alice", "alice memory two", []float32{0.9, 0.1, 0})
	seedVector(t, idx, "e3", "bob", "bob secret", []float32{1, 0, 0})

	out, err := p.Invoke(context.Background(), ChatInput{UserID: "alice", Query: "what do you remember?"})
	require.NoError(t, err)
	require.Len(t, out.Matches, 2)
	for _, m := range out.Matches {
		assert.Equal(t, "alice", m.Metadata["userId"])
	}

	// Retrieval context reaches the model; the other tenant's data never does.
	last := client.calls[0][len(client.calls[0])-1]
	assert.Contains(t, last.Content, "alice memory one")
	assert.NotContains(t, last.Content, "bob secret")
	assert.Equal(t, 1, emb.calls)
}

func TestChatPipeline_GlobalModeZeroMatchesStillAnswers(t *testing.T) {
	client := &scriptedLLM{responses: []string{"I don't have any journal memories yet."}}
	p, _, _ := newTestChatPipeline(t, client, &fakeEmbedder{})

	out, err := p.Invoke(context.Background(), ChatInput{UserID: "alice", Query: "anything?"})
	require.NoError(t, err)
	assert.Equal(t, "I don't have any journal memories yet.", out.Answer)
	assert.Empty(t, out.Matches)
	require.Len(t, client.calls, 1)
}

func TestChatPipeline_HistoryReplayIsUserOnly(t *testing.T) {
	client := &scriptedLLM{responses: []string{"ok"}}
	p, _, _ := newTestChatPipeline(t, client, &fakeEmbedder{})

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "turn one"},
		{Role: llm.RoleAssistant, Content: "assistant reply"},
		{Role: llm.RoleUser, Content: "turn two"},
		{Role: llm.RoleUser, Content: "turn three"},
		{Role: llm.RoleUser, Content: "turn four"},
		{Role: llm.RoleUser, Content: "turn five"},
		{Role: llm.RoleUser, Content: "turn six"},
	}
	_, err := p.Invoke(context.Background(), ChatInput{UserID: "alice", Query: "now?", Messages: history})
	require.NoError(t, err)

	msgs := client.calls[0]
	// persona + 5 user turns + current prompt
	require.Len(t, msgs, 7)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	for _, m := range msgs[1:6] {
		assert.Equal(t, llm.RoleUser, m.Role)
		assert.NotEqual(t, "assistant reply", m.Content)
	}
	// Oldest user turn fell out of the window.
	assert.Equal(t, "turn two", msgs[1].Content)
	assert.Equal(t, "turn six", msgs[5].Content)
}

func TestChatPipeline_BackgroundSummarizeRuns(t *testing.T) {
	chatClient := &scriptedLLM{responses: []string{"answer"}}
	sumClient := &scriptedLLM{responses: []string{`{"isImportant":false,"reason":"small talk"}`}}

	st := newTestStore(t)
	idx := vectorindex.NewInMemoryIndex()
	summarizer := NewSummarizer(sumClient, &fakeEmbedder{}, idx, st, SummarizerConfig{}, zerolog.Nop())
	p := NewChatPipeline(chatClient, &fakeEmbedder{}, idx, st, summarizer, ChatConfig{}, zerolog.Nop())

	// Run the detached task synchronously so the test can observe it.
	p.spawn = func(fn func()) { fn() }

	_, err := p.Invoke(context.Background(), ChatInput{UserID: "alice", Query: "nice weather"})
	require.NoError(t, err)

	require.Len(t, sumClient.calls, 1)
	assert.Equal(t, 0, idx.Len())
}

func TestChatPipeline_InputValidation(t *testing.T) {
	p, _, _ := newTestChatPipeline(t, &scriptedLLM{}, &fakeEmbedder{})

	_, err := p.Invoke(context.Background(), ChatInput{UserID: "alice", Query: "  "})
	require.Error(t, err)

	_, err = p.Invoke(context.Background(), ChatInput{Query: "hi"})
	require.Error(t, err)
}

func TestRenderMatches(t *testing.T) {
	matches := []vectorindex.Match{
		{ID: "a", Metadata: map[string]interface{}{
			"date":    "2025-05-01T10:00:00Z",
			"summary": "first memory",
			"bullets": []interface{}{"one", "two"},
		}},
		{ID: "b", Metadata: map[string]interface{}{
			"content": "raw chat content",
		}},
	}
	got := renderMatches(matches)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1. [2025-05-01] first memory | one | two", lines[0])
	assert.Equal(t, "2. [Unknown date] raw chat content", lines[1])

	assert.Equal(t, "", renderMatches(nil))
}
