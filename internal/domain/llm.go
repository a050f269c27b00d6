package domain

import "context"

// Message is a single chat-wire message sent to a generation provider.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompleteOptions carries per-call generation parameters. Providers
// that do not support a parameter must ignore it rather than fail.
type CompleteOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMClient defines the capability to send chat messages to a
// generation provider and receive the assistant text.
type LLMClient interface {
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
	Version() string
}

// VectorEncoder generates fixed-length embeddings for texts.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
