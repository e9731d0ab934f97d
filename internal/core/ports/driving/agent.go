package driving

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// Agent answers questions, calling tools as the chat model decides.
type Agent interface {
	// Ask appends question to conv, runs the tool-calling loop and returns
	// the final answer. Text deltas are passed to onDelta as they stream;
	// onDelta may be nil.
	Ask(ctx context.Context, conv *domain.Conversation, question string, onDelta func(string)) (string, error)
}
