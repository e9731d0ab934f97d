package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
	"github.com/custodia-labs/sitechat/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.Agent = (*AgentService)(nil)

// DefaultMaxSteps bounds model calls per question.
const DefaultMaxSteps = 8

// AgentService runs the tool-calling loop: the chat model either answers or
// asks for tools, whose results are fed back until it answers.
type AgentService struct {
	model    driven.ChatModel
	tools    *ToolTable
	maxSteps int
}

// AgentOption configures the agent.
type AgentOption func(*AgentService)

// WithMaxSteps sets the step bound. Values below 1 are ignored.
func WithMaxSteps(n int) AgentOption {
	return func(a *AgentService) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// NewAgentService creates a new agent. tools may be nil for a plain chat.
func NewAgentService(model driven.ChatModel, tools *ToolTable, opts ...AgentOption) *AgentService {
	if tools == nil {
		tools = NewToolTable()
	}
	a := &AgentService{
		model:    model,
		tools:    tools,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask appends question to conv and loops until the model answers without
// tool calls. Every assistant and tool message is appended to conv, so a
// conversation can be continued with another Ask. On error conv is left as
// it was before the call.
func (a *AgentService) Ask(
	ctx context.Context, conv *domain.Conversation, question string, onDelta func(string),
) (answer string, err error) {
	if conv == nil {
		return "", fmt.Errorf("%w: conversation is nil", domain.ErrInvalidInput)
	}

	defer logger.Stage("Agent")()
	logger.Debug("Question: %q, model: %s", question, a.model.ModelName())

	before := conv.Len()
	defer func() {
		if err != nil {
			conv.Truncate(before)
		}
	}()

	conv.Append(domain.Message{Role: domain.RoleUser, Content: question})

	for step := 1; step <= a.maxSteps; step++ {
		msg, err := a.complete(ctx, conv.Messages(), onDelta)
		if err != nil {
			return "", err
		}
		conv.Append(msg)

		if len(msg.ToolCalls) == 0 {
			logger.Debug("Answered after %d step(s)", step)
			return msg.Content, nil
		}

		for _, call := range msg.ToolCalls {
			conv.Append(domain.Message{
				Role:       domain.RoleTool,
				ToolCallID: call.ID,
				Content:    a.runTool(ctx, call),
			})
		}
	}

	return "", fmt.Errorf("%w: no answer after %d steps", domain.ErrMaxStepsExceeded, a.maxSteps)
}

// complete streams one model turn, forwarding text deltas.
func (a *AgentService) complete(
	ctx context.Context, messages []domain.Message, onDelta func(string),
) (domain.Message, error) {
	stream, err := a.model.Stream(ctx, messages, a.tools.Specs())
	if err != nil {
		return domain.Message{}, fmt.Errorf("chat %s: %w", a.model.ModelName(), err)
	}
	defer stream.Close()

	for stream.Next() {
		if d := stream.Delta(); d != "" && onDelta != nil {
			onDelta(d)
		}
	}
	if err := stream.Err(); err != nil {
		return domain.Message{}, fmt.Errorf("chat %s: %w", a.model.ModelName(), err)
	}

	msg := stream.Message()
	msg.Role = domain.RoleAssistant
	return msg, nil
}

// runTool executes a tool call. Failures become the tool result text so
// the model can recover.
func (a *AgentService) runTool(ctx context.Context, call domain.ToolCall) string {
	logger.Info("Tool call %s(%s)", call.Name, call.Arguments)

	result, err := a.tools.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		logger.Warn("Tool %s failed: %v", call.Name, err)
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}
