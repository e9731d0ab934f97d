package driven

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// ChatModel provides streaming chat completions with optional tool use.
//
// Implementations may include:
//   - OpenAI and OpenAI-compatible endpoints (gpt-4o, Groq)
//   - Ollama (local models)
type ChatModel interface {
	// Stream starts a completion over the message history. The model may
	// answer with text, request tool calls, or both.
	Stream(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (ChatStream, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatStream is a sequence of incremental text deltas.
// Callers concatenate deltas; to cancel, stop calling Next and Close.
type ChatStream interface {
	// Next advances to the next delta. It returns false at the end of the
	// stream or on error.
	Next() bool

	// Delta returns the text added by the current step (may be empty).
	Delta() string

	// Message returns the complete assistant message once Next has
	// returned false without error.
	Message() domain.Message

	// Err returns the first error encountered.
	Err() error

	// Close releases the underlying connection.
	Close() error
}
