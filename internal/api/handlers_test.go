package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/pipeline"
	"github.com/lumora-ai/lumora-server/internal/services"
	"github.com/lumora-ai/lumora-server/internal/store/sqlite"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

type cannedLLM struct{ answer string }

func (c *cannedLLM) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	return c.answer, nil
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// newTestServer builds the full router over a temp sqlite store and an
// in-memory vector index. Enrichment is disabled (nil summarizer) so
// journal handlers can be exercised without an LLM.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	idx := vectorindex.NewInMemoryIndex()
	log := zerolog.Nop()

	chatPipe := pipeline.NewChatPipeline(&cannedLLM{answer: "canned answer"}, fixedEmbedder{}, idx, st, nil, pipeline.ChatConfig{}, log)

	journalSvc := services.NewJournalService(st, idx, nil, "default", log)
	chatSvc := services.NewChatService(st, chatPipe, log)
	accountSvc := services.NewAccountService(st, idx, "default", log)

	srv := httptest.NewServer(NewRouter(journalSvc, chatSvc, accountSvc))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, userID string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func TestJournalCRUD(t *testing.T) {
	srv := newTestServer(t)

	// Missing identity header
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/journal", "", map[string]string{"title": "t", "content": "c"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-User-Id, got %d", resp.StatusCode)
	}

	// Create
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/journal", "alice", map[string]string{
		"title": "My day", "content": "It went well.",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created model.JournalEntry
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created entry: %v", err)
	}
	if created.EntryID == "" || created.Title != "My day" {
		t.Fatalf("unexpected created entry: %+v", created)
	}

	// Validation failure
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/journal", "alice", map[string]string{"title": "", "content": "c"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty title, got %d", resp.StatusCode)
	}

	// Get
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+created.EntryID, "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}

	// Cross-tenant get is a 404
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+created.EntryID, "bob", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-tenant get: expected 404, got %d", resp.StatusCode)
	}

	// Update
	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/journal/"+created.EntryID, "alice", map[string]string{
		"title": "My day, revised", "content": "It went very well.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var updated model.JournalEntry
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated entry: %v", err)
	}
	if updated.Title != "My day, revised" {
		t.Fatalf("title not updated: %+v", updated)
	}

	// List
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/journal", "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var listOut struct {
		Entries []model.JournalEntry `json:"entries"`
		Count   int                  `json:"count"`
	}
	if err := json.Unmarshal(body, &listOut); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listOut.Count != 1 {
		t.Fatalf("expected 1 entry, got %d", listOut.Count)
	}

	// Delete
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/journal/"+created.EntryID, "alice", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+created.EntryID, "alice", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestJournalLogRoutes(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/journal", "alice", map[string]string{
		"title": "t", "content": "c",
	})
	var created model.JournalEntry
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Add log
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/journal/"+created.EntryID+"/logs", "alice", map[string]string{
		"content": "an evening note",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add log: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var withLog model.JournalEntry
	if err := json.Unmarshal(body, &withLog); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(withLog.Logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(withLog.Logs))
	}
	logID := withLog.Logs[0].LogID

	// Update log
	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/journal/%s/logs/%s", srv.URL, created.EntryID, logID), "alice", map[string]string{
		"content": "edited",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update log: expected 200, got %d: %s", resp.StatusCode, body)
	}

	// Delete log
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/journal/%s/logs/%s", srv.URL, created.EntryID, logID), "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete log: expected 200, got %d", resp.StatusCode)
	}

	// Unknown log id
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/journal/%s/logs/%s", srv.URL, created.EntryID, "missing"), "alice", map[string]string{"content": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing log: expected 404, got %d", resp.StatusCode)
	}
}

func TestChatSessionRoutes(t *testing.T) {
	srv := newTestServer(t)

	// Start a global session
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/chat/session", "alice", map[string]string{
		"message": "what do you remember about me?",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var turn struct {
		Session model.ChatSession `json:"session"`
		Answer  string            `json:"answer"`
	}
	if err := json.Unmarshal(body, &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.Answer != "canned answer" {
		t.Fatalf("unexpected answer: %q", turn.Answer)
	}
	if len(turn.Session.Messages) != 2 {
		t.Fatalf("expected 2 messages after first turn, got %d", len(turn.Session.Messages))
	}
	if turn.Session.Title != "what do you remember about me?" {
		t.Fatalf("unexpected session title: %q", turn.Session.Title)
	}

	// Continue
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/chat/session/"+turn.Session.SessionID, "alice", map[string]string{
		"message": "and what else?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("continue: expected 200, got %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if len(turn.Session.Messages) != 4 {
		t.Fatalf("expected 4 messages after second turn, got %d", len(turn.Session.Messages))
	}

	// List
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/chat/sessions", "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list sessions: expected 200, got %d", resp.StatusCode)
	}

	// Pinned session against a missing entry
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/chat/session", "alice", map[string]interface{}{
		"message": "about this entry", "entryId": "missing-entry",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("pinned missing entry: expected 404, got %d", resp.StatusCode)
	}

	// Delete
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/chat/session/"+turn.Session.SessionID, "alice", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete session: expected 204, got %d", resp.StatusCode)
	}
}

func TestDeleteUserRoute(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/journal", "alice", map[string]string{"title": "t", "content": "c"})

	// Deleting someone else is forbidden
	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/users/bob", "alice", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-user delete, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/users/alice", "alice", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/journal", "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list after delete: expected 200, got %d", resp.StatusCode)
	}
	var listOut struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &listOut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listOut.Count != 0 {
		t.Fatalf("expected 0 entries after user deletion, got %d", listOut.Count)
	}
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(t)

	BindServiceHealth(func() bool { return true })
	defer BindServiceHealth(func() bool { return false })

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if out.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", out.Status)
	}
}
