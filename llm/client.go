package llm

import "context"

// Role tags a chat message with its author.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request asks a specific configured model to complete a conversation.
type Request struct {
	// ModelKey names the configured model (e.g., "phi3"), not the
	// backend's own model identifier.
	ModelKey string

	// Messages is the full conversation, system prompt first.
	Messages []Message
}

// Response is the model's completion.
type Response struct {
	// Content is the generated text.
	Content string

	// Model is the backend model identifier that produced the text.
	Model string
}

// Client generates text from chat messages using a named model.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
