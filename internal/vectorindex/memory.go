package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// InMemoryIndex is a process-local Index used by tests and the "memory"
// vector-store driver. It reproduces the contract semantics: upsert
// replaces by id, queries are cosine-ranked and userId-filtered.
type InMemoryIndex struct {
	mu   sync.RWMutex
	recs map[string]Record // key: namespace + "/" + id
}

func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{recs: make(map[string]Record)}
}

func (m *InMemoryIndex) key(namespace, id string) string { return namespace + "/" + id }

func (m *InMemoryIndex) Upsert(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[m.key(rec.Namespace, rec.ID)] = rec
	return nil
}

func (m *InMemoryIndex) Query(ctx context.Context, q Query) ([]Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Match, 0, topK)
	for _, rec := range m.recs {
		if rec.Namespace != q.Namespace {
			continue
		}
		if owner, _ := rec.Metadata["userId"].(string); owner != q.UserID {
			continue
		}
		out = append(out, Match{
			ID:       rec.ID,
			Score:    cosine(q.Embedding, rec.Embedding),
			Metadata: rec.Metadata,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *InMemoryIndex) DeleteByID(ctx context.Context, namespace string, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.recs, m.key(namespace, id))
	}
	return nil
}

func (m *InMemoryIndex) DeleteByUser(ctx context.Context, namespace, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rec := range m.recs {
		if rec.Namespace != namespace {
			continue
		}
		if owner, _ := rec.Metadata["userId"].(string); owner == userID {
			delete(m.recs, k)
		}
	}
	return nil
}

// Len reports the number of stored records across namespaces.
func (m *InMemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs)
}

// Get returns the stored record for id, if present.
func (m *InMemoryIndex) Get(namespace, id string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[m.key(namespace, id)]
	return rec, ok
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
