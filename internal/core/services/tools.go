package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
	"github.com/custodia-labs/sitechat/internal/logger"
)

// ToolRetrieveContext is the name the chat model uses to request context.
const ToolRetrieveContext = "retrieve_context"

// ToolHandler executes a tool call. args is the raw JSON arguments object.
// The returned string is sent back to the model as the tool result.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool pairs a tool description with its handler.
type Tool struct {
	Spec    domain.ToolSpec
	Handler ToolHandler
}

// ToolTable maps tool names to tools. Registration order is kept so the
// model sees tools in a stable order.
type ToolTable struct {
	tools map[string]Tool
	order []string
}

// NewToolTable creates a tool table holding the given tools.
func NewToolTable(tools ...Tool) *ToolTable {
	t := &ToolTable{tools: make(map[string]Tool)}
	for _, tool := range tools {
		t.Register(tool)
	}
	return t
}

// Register adds or replaces a tool.
func (t *ToolTable) Register(tool Tool) {
	if _, exists := t.tools[tool.Spec.Name]; !exists {
		t.order = append(t.order, tool.Spec.Name)
	}
	t.tools[tool.Spec.Name] = tool
}

// Specs returns the tool descriptions in registration order.
func (t *ToolTable) Specs() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(t.order))
	for _, name := range t.order {
		specs = append(specs, t.tools[name].Spec)
	}
	return specs
}

// Call runs the named tool. Unknown names return domain.ErrUnknownTool.
func (t *ToolTable) Call(ctx context.Context, name, args string) (string, error) {
	tool, ok := t.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}
	if args == "" {
		args = "{}"
	}
	return tool.Handler(ctx, json.RawMessage(args))
}

// retrieveContextArgs are the arguments of the retrieve_context tool.
type retrieveContextArgs struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// RetrieveErrorMessage is the tool result sent to the model when retrieval fails.
func RetrieveErrorMessage(query string) string {
	return fmt.Sprintf("Error retrieving info for '%s'. Please try again.", query)
}

// NewRetrieveContextTool builds the retrieve_context tool over collection.
// Retrieval failures are logged and turned into a retryable message for
// the model instead of failing the conversation.
func NewRetrieveContextTool(retrieval driving.RetrievalService, collection string, defaultK int) Tool {
	if defaultK < 1 {
		defaultK = DefaultK
	}

	return Tool{
		Spec: domain.ToolSpec{
			Name:        ToolRetrieveContext,
			Description: "Retrieve relevant information from the loaded documents to help answer a query.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query.",
					},
					"k": map[string]any{
						"type":        "integer",
						"description": fmt.Sprintf("Number of passages to return (default %d).", defaultK),
						"minimum":     1,
					},
				},
				"required": []string{"query"},
			},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args retrieveContextArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return "", fmt.Errorf("%w: retrieve_context arguments: %w", domain.ErrInvalidInput, err)
			}
			if args.K == 0 {
				args.K = defaultK
			}

			logger.Debug("Tool %s: query=%q k=%d", ToolRetrieveContext, args.Query, args.K)
			text, err := retrieval.RetrieveContext(ctx, collection, args.Query, args.K)
			if err != nil {
				logger.Error("retrieve_context %q: %v", args.Query, err)
				return RetrieveErrorMessage(args.Query), nil
			}
			return text, nil
		},
	}
}
