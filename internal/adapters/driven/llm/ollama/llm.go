// Package ollama provides a chat model adapter using Ollama's /api/chat
// endpoint with streaming and tool calls.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.1"
	DefaultLLMTimeout = 300 * time.Second

	maxLineBytes = 1 << 20
)

// LLMConfig holds configuration for the Ollama chat model.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model to use (default: llama3.1).
	// It must support tool calling.
	Model string

	// Timeout bounds a whole streamed response (default: 300s).
	Timeout time.Duration
}

// ChatModel streams chat completions from Ollama.
type ChatModel struct {
	client  *http.Client
	baseURL string
	model   string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []tool        `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// chatResponse is one line of the streamed /api/chat response.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewChatModel creates a new Ollama chat model.
func NewChatModel(cfg LLMConfig) *ChatModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &ChatModel{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Stream posts the conversation to /api/chat and returns the NDJSON stream.
func (m *ChatModel) Stream(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (driven.ChatStream, error) {
	reqBody := chatRequest{
		Model:    m.model,
		Messages: toChatMessages(messages),
		Stream:   true,
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, tool{
			Type:     "function",
			Function: toolFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &chatStream{body: resp.Body, scanner: scanner}, nil
}

// toChatMessages converts the conversation to Ollama's message format.
func toChatMessages(messages []domain.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		cm := chatMessage{Role: string(msg.Role), Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			var call toolCall
			call.Function.Name = tc.Name
			call.Function.Arguments = json.RawMessage(tc.Arguments)
			if !json.Valid(call.Function.Arguments) {
				call.Function.Arguments = json.RawMessage("{}")
			}
			cm.ToolCalls = append(cm.ToolCalls, call)
		}
		out = append(out, cm)
	}
	return out
}

// ModelName returns the name of the chat model being used.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
func (m *ChatModel) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (m *ChatModel) Close() error {
	return nil
}

// chatStream reads one JSON object per line until done.
type chatStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	delta   string
	content strings.Builder
	calls   []domain.ToolCall
	done    bool
	err     error
}

func (s *chatStream) Next() bool {
	s.delta = ""
	if s.done || s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp chatResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			s.err = fmt.Errorf("decode response: %w", err)
			return false
		}
		if resp.Error != "" {
			s.err = fmt.Errorf("ollama error: %s", resp.Error)
			return false
		}

		s.delta = resp.Message.Content
		s.content.WriteString(resp.Message.Content)
		for _, tc := range resp.Message.ToolCalls {
			// Ollama does not assign call IDs.
			s.calls = append(s.calls, domain.ToolCall{
				ID:        fmt.Sprintf("call_%d", len(s.calls)),
				Name:      tc.Function.Name,
				Arguments: string(tc.Function.Arguments),
			})
		}
		s.done = resp.Done
		return true
	}

	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("read stream: %w", err)
	}
	return false
}

func (s *chatStream) Delta() string {
	return s.delta
}

func (s *chatStream) Message() domain.Message {
	return domain.Message{
		Role:      domain.RoleAssistant,
		Content:   s.content.String(),
		ToolCalls: s.calls,
	}
}

func (s *chatStream) Err() error {
	return s.err
}

func (s *chatStream) Close() error {
	return s.body.Close()
}
