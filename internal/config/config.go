package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the journal service.
// Environment variables are parsed from the LUMORA_ prefix,
// e.g. LUMORA_HTTP_PORT, LUMORA_POSTGRES_DSN.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Record store
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"lumora.db"`

	// Vector index
	VectorStore string `envconfig:"VECTOR_STORE" default:"weaviate"`
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"weaviate:8080"`

	// Language model (OpenAI-compatible chat completions)
	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	LLMAPIKey  string `envconfig:"LLM_API_KEY" default:""`
	LLMModel   string `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`

	// Embeddings
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"cohere"`
	EmbedBaseURL  string `envconfig:"EMBED_BASE_URL" default:"https://api.cohere.com"`
	EmbedAPIKey   string `envconfig:"EMBED_API_KEY" default:""`
	EmbedModel    string `envconfig:"EMBED_MODEL" default:"embed-english-v3.0"`

	// Retrieval
	Namespace     string `envconfig:"NAMESPACE" default:"default"`
	RetrievalTopK int    `envconfig:"RETRIEVAL_TOPK" default:"5"`

	// Per-call timeouts, seconds
	GenerateTimeoutSeconds  int `envconfig:"GENERATE_TIMEOUT_SECONDS" default:"60"`
	EmbedTimeoutSeconds     int `envconfig:"EMBED_TIMEOUT_SECONDS" default:"15"`
	VectorTimeoutSeconds    int `envconfig:"VECTOR_TIMEOUT_SECONDS" default:"10"`
	BootstrapTimeoutSeconds int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"15"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates driver selections.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("LUMORA_POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	allowedVec := map[string]bool{"weaviate": true, "memory": true}
	if !allowedVec[c.VectorStore] {
		return fmt.Errorf("unsupported VECTOR_STORE: %s", c.VectorStore)
	}
	if c.RetrievalTopK <= 0 {
		c.RetrievalTopK = 5
	}
	return nil
}

// New creates a new Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("LUMORA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests: in-memory
// vector store, sqlite record store, local endpoints.
func NewForTesting() *Config {
	return &Config{
		Environment:             EnvTesting,
		HTTPPort:                8080,
		DBDriver:                "sqlite",
		SQLitePath:              "file::memory:",
		VectorStore:             "memory",
		WeaviateURL:             "localhost:8082",
		LLMBaseURL:              "http://localhost:9999/v1",
		LLMModel:                "llama-3.3-70b-versatile",
		EmbedProvider:           "cohere",
		EmbedBaseURL:            "http://localhost:9998",
		EmbedModel:              "embed-english-v3.0",
		Namespace:               "default",
		RetrievalTopK:           5,
		GenerateTimeoutSeconds:  5,
		EmbedTimeoutSeconds:     5,
		VectorTimeoutSeconds:    5,
		BootstrapTimeoutSeconds: 5,

		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
