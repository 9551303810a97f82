package vectorindex

import (
	"context"
	"fmt"
)

// Record is one vector plus its denormalized metadata bag. ID is the
// logical record id (journal entry id, or a synthesized chat id); the
// backing store may map it to its own object identity, but upserts with
// the same ID must fully replace the previous record.
type Record struct {
	ID        string
	Namespace string
	Embedding []float32
	Metadata  map[string]interface{}
}

// Match is one retrieval hit.
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Query describes a filtered nearest-neighbor lookup. UserID is
// mandatory: the index is multi-tenant and the userId filter is the sole
// isolation mechanism between users.
type Query struct {
	Namespace string
	Embedding []float32
	TopK      int
	UserID    string
}

// Validate rejects queries that would cross tenant boundaries.
func (q Query) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("vectorindex: query requires userId")
	}
	if len(q.Embedding) == 0 {
		return fmt.Errorf("vectorindex: query requires embedding")
	}
	return nil
}

// Index is a namespaced nearest-neighbor store keyed by logical id.
type Index interface {
	// Upsert writes a record, fully replacing any prior record with the
	// same namespace and id.
	Upsert(ctx context.Context, rec Record) error

	// Query returns up to TopK matches restricted to q.UserID, in
	// index-native relevance order.
	Query(ctx context.Context, q Query) ([]Match, error)

	// DeleteByID removes records by logical id. Missing ids are not an
	// error.
	DeleteByID(ctx context.Context, namespace string, ids ...string) error

	// DeleteByUser removes every record owned by userID in the
	// namespace (account deletion cleanup).
	DeleteByUser(ctx context.Context, namespace, userID string) error
}

// HealthPinger is optionally implemented by an Index to expose
// specialized health check logic. Returns nil when healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
