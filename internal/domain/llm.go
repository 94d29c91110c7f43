package domain

import "context"

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat-completion prompt.
type Message struct {
	Role    string
	Content string
}

// ChatBackend is the language-model contract shared by local and hosted providers.
// Implementations return ErrEmptyCompletion when the model produced no choices.
type ChatBackend interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}
