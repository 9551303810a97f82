package factory

import (
	"fmt"
	"time"

	"github.com/lumora-ai/lumora-server/internal/config"
	"github.com/lumora-ai/lumora-server/internal/embeddings"
	"github.com/lumora-ai/lumora-server/internal/embeddings/cohere"
)

// NewEmbeddingProvider creates the embedding provider selected by
// cfg.EmbedProvider.
func NewEmbeddingProvider(cfg *config.Config) (embeddings.Provider, error) {
	switch cfg.EmbedProvider {
	case "cohere":
		timeout := time.Duration(cfg.EmbedTimeoutSeconds) * time.Second
		return cohere.New(cfg.EmbedBaseURL, cfg.EmbedAPIKey, cfg.EmbedModel, timeout), nil
	default:
		return nil, fmt.Errorf("unknown EMBED_PROVIDER: %s", cfg.EmbedProvider)
	}
}
