package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/store/sqlite"
)

// scriptedLLM replays canned responses in call order and records the
// messages of every call.
type scriptedLLM struct {
	responses []string
	calls     [][]llm.Message
	err       error
}

func (s *scriptedLLM) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	s.calls = append(s.calls, msgs)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.calls) - 1
	if i >= len(s.responses) {
		return "", fmt.Errorf("no scripted response for call %d", i+1)
	}
	return s.responses[i], nil
}

// fakeEmbedder returns a fixed vector and counts calls.
type fakeEmbedder struct {
	vec   []float32
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.vec == nil {
		return []float32{1, 0, 0}, nil
	}
	return f.vec, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "pipeline_test.db"))
	require.NoError(t, err)
	return st
}

const validSummaryJSON = `{"summary":"Reflected on a productive day","bullets":["shipped the feature","went for a run"],"mood":"content","tags":["work","health"],"sentiment":"positive","intent":"reflection"}`
