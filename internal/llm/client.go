package llm

import "context"

// Wire roles for chat-completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn sent to a chat-completion model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces a completion for a list of role-tagged messages.
// Implementations are stateless request/response wrappers.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
