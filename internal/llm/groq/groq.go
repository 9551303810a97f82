// Package groq implements llm.Client against an OpenAI-compatible
// chat-completions endpoint (Groq by default).
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lumora-ai/lumora-server/internal/llm"
)

// Options tune the generation profile per client instance.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	client *resty.Client
	model  string
	opts   Options
}

// New creates a chat-completions client. baseURL should include the API
// version prefix, e.g. "https://api.groq.com/openai/v1".
func New(baseURL, apiKey, model string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetTimeout(opts.Timeout)
	return &Client{client: c, model: model, opts: opts}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the messages and returns the generated text.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("groq: empty message list")
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("groq status %d: %s", resp.StatusCode(), resp.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("groq error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// HealthPing checks endpoint reachability by listing models.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("groq status %d", resp.StatusCode())
	}
	return nil
}
