package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/config"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

// NewVectorIndex creates a vector index implementation based on config.
// Weaviate schema bootstrap runs async with a short timeout; the index is
// returned immediately for fast startup.
func NewVectorIndex(ctx context.Context, cfg *config.Config, log zerolog.Logger) (vectorindex.Index, error) {
	switch cfg.VectorStore {
	case "memory":
		return vectorindex.NewInMemoryIndex(), nil

	case "weaviate":
		if cfg.WeaviateURL == "" {
			return nil, fmt.Errorf("LUMORA_WEAVIATE_URL is required when VECTOR_STORE=weaviate")
		}
		idx, err := vectorindex.NewWeaviateIndex(cfg.WeaviateURL)
		if err != nil {
			return nil, err
		}

		go func() {
			bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
			bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
			defer cancel()

			if err := vectorindex.BootstrapWeaviate(bootstrapCtx, cfg.WeaviateURL); err != nil {
				log.Warn().Err(err).Str("url", cfg.WeaviateURL).Msg("vector index bootstrap failed")
			} else {
				log.Debug().Str("url", cfg.WeaviateURL).Msg("vector index bootstrap completed")
			}
		}()

		return idx, nil

	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE: %s", cfg.VectorStore)
	}
}
