package health

import "context"

// HealthPinger is implemented by components (stores, the vector index,
// the embedder, LLM clients) that can probe their backend. HealthPing
// returns nil when the component is reachable and healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
