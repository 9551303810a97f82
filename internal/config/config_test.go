package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "weaviate", cfg.VectorStore)
	assert.Equal(t, "default", cfg.Namespace)
	assert.Equal(t, 5, cfg.RetrievalTopK)
	assert.Equal(t, 60, cfg.GenerateTimeoutSeconds)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LUMORA_HTTP_PORT", "9090")
	t.Setenv("LUMORA_DB_DRIVER", "postgres")
	t.Setenv("LUMORA_POSTGRES_DSN", "postgres://localhost/lumora")
	t.Setenv("LUMORA_VECTOR_STORE", "memory")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "memory", cfg.VectorStore)
}

func TestResolveDefaults_Rejections(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "oracle"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.VectorStore = "pinecone"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.RetrievalTopK = -1
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, 5, cfg.RetrievalTopK)
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.VectorStore)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
}
