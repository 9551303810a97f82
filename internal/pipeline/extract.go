package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lumora-ai/lumora-server/internal/model"
)

// ExtractJSON locates the first '{' and last '}' in text and returns the
// slice between them. Models wrap JSON in prose or markdown fences often
// enough that this fallback is a hard robustness requirement, not
// something to prompt away.
func ExtractJSON(text string) ([]byte, error) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first == -1 || last == -1 || last <= first {
		return nil, &ParseError{Raw: text}
	}
	return []byte(text[first : last+1]), nil
}

// ParseSummaryResult extracts and validates a journal summarization
// response.
func ParseSummaryResult(text string) (*model.SummaryResult, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var out model.SummaryResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if out.Summary == "" {
		return nil, &SchemaError{Reason: "summary is required"}
	}
	if n := len(out.Bullets); n < 1 || n > 10 {
		return nil, &SchemaError{Reason: fmt.Sprintf("bullets must have 1-10 entries, got %d", n)}
	}
	if out.Mood == "" {
		return nil, &SchemaError{Reason: "mood is required"}
	}
	if n := len(out.Tags); n < 1 || n > 8 {
		return nil, &SchemaError{Reason: fmt.Sprintf("tags must have 1-8 entries, got %d", n)}
	}
	if out.Sentiment == "" {
		return nil, &SchemaError{Reason: "sentiment is required"}
	}
	if out.Intent == "" {
		return nil, &SchemaError{Reason: "intent is required"}
	}
	return &out, nil
}

// ParseChatImportance extracts and validates an importance
// classification response.
func ParseChatImportance(text string) (*model.ChatImportance, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if _, ok := probe["isImportant"]; !ok {
		return nil, &SchemaError{Reason: "isImportant is required"}
	}
	var out model.ChatImportance
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	return &out, nil
}

// ParseChatBullets extracts and validates a chat bullet-point response.
func ParseChatBullets(text string) (*model.ChatBullets, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var out model.ChatBullets
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if n := len(out.Bullets); n < 1 || n > 5 {
		return nil, &SchemaError{Reason: fmt.Sprintf("bullets must have 1-5 entries, got %d", n)}
	}
	return &out, nil
}
