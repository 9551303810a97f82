package factory

import (
	"time"

	"github.com/lumora-ai/lumora-server/internal/config"
	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/llm/groq"
)

// NewSummarizeLLM builds the low-temperature client used for structured
// extraction.
func NewSummarizeLLM(cfg *config.Config) llm.Client {
	return groq.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, groq.Options{
		Temperature: 0.4,
		MaxTokens:   600,
		Timeout:     time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
	})
}

// NewChatLLM builds the conversational client.
func NewChatLLM(cfg *config.Config) llm.Client {
	return groq.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, groq.Options{
		Temperature: 0.7,
		MaxTokens:   1024,
		Timeout:     time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
	})
}
