// Package cohere implements embeddings.Provider against the Cohere
// embed API. The default model (embed-english-v3.0) returns 1024-d
// vectors.
package cohere

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type Provider struct {
	client *resty.Client
	model  string
}

// New creates a Cohere embedding provider. baseURL defaults to the
// public API host when empty.
func New(baseURL, apiKey, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = "https://api.cohere.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetTimeout(timeout)
	return &Provider{client: c, model: model}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Message    string      `json:"message"`
}

// Embed generates a dense vector for the given text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	reqBody := embedRequest{Texts: []string{text}, Model: p.model, InputType: "search_query"}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/v1/embed")
	if err != nil {
		return nil, fmt.Errorf("cohere request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("cohere status %d: %s", resp.StatusCode(), resp.String())
	}

	var out embedResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Message != "" && len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("cohere error: %s", out.Message)
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("cohere: empty embeddings")
	}

	vec := make([]float32, len(out.Embeddings[0]))
	for i, v := range out.Embeddings[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}

// HealthPing checks API reachability without spending embed quota.
func (p *Provider) HealthPing(ctx context.Context) error {
	resp, err := p.client.R().SetContext(ctx).Get("/v1/models")
	if err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("cohere status %d", resp.StatusCode())
	}
	return nil
}
