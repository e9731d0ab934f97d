// Package openai provides a chat model adapter using the OpenAI API.
// Any OpenAI-compatible endpoint (Groq, vLLM, LM Studio) works through
// BaseURL.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI chat model.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxRetries is the client retry count (default: the SDK default).
	MaxRetries *int
}

// ChatModel streams chat completions with tool calls from the OpenAI API.
type ChatModel struct {
	client openai.Client
	model  string
}

// NewChatModel creates a new OpenAI chat model.
func NewChatModel(cfg LLMConfig) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	return &ChatModel{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Stream starts a streaming completion over messages, offering tools.
func (m *ChatModel) Stream(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (driven.ChatStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.model),
		Messages: toMessageParams(messages),
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}

	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("openai: start stream: %w", err)
	}
	return &chatStream{stream: stream}, nil
}

// ModelName returns the name of the chat model being used.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Ping validates the API key by listing models.
func (m *ChatModel) Ping(ctx context.Context) error {
	if _, err := m.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (m *ChatModel) Close() error {
	return nil
}

// toMessageParams converts the conversation to SDK message params.
func toMessageParams(messages []domain.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case domain.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case domain.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case domain.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		}
	}
	return out
}

// toToolParams converts tool specs to SDK function tools.
func toToolParams(tools []domain.ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}
	return out
}

// chatStream adapts the SDK stream, accumulating the final message.
type chatStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	acc    openai.ChatCompletionAccumulator
	delta  string
}

func (s *chatStream) Next() bool {
	if !s.stream.Next() {
		s.delta = ""
		return false
	}
	chunk := s.stream.Current()
	s.acc.AddChunk(chunk)

	s.delta = ""
	if len(chunk.Choices) > 0 {
		s.delta = chunk.Choices[0].Delta.Content
	}
	return true
}

func (s *chatStream) Delta() string {
	return s.delta
}

func (s *chatStream) Message() domain.Message {
	msg := domain.Message{Role: domain.RoleAssistant}
	if len(s.acc.Choices) == 0 {
		return msg
	}
	final := s.acc.Choices[0].Message
	msg.Content = final.Content
	for _, tc := range final.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg
}

func (s *chatStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("openai: stream: %w", err)
	}
	return nil
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
