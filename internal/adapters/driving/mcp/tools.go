package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// RetrieveContextInput is the input schema for the retrieve_context tool.
type RetrieveContextInput struct {
	Query      string `json:"query" jsonschema:"the question or search text"`
	K          int    `json:"k,omitempty" jsonschema:"number of passages to return (default 3)"`
	Collection string `json:"collection,omitempty" jsonschema:"collection to search (default: the server's collection)"`
}

// RetrieveContextOutput is the output schema for the retrieve_context tool.
type RetrieveContextOutput struct {
	Context    string `json:"context"`
	Collection string `json:"collection"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Locator    string `json:"locator" jsonschema:"URL or file path to load"`
	Collection string `json:"collection,omitempty" jsonschema:"target collection (default: the server's collection)"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Status     string `json:"status"`
	Count      int    `json:"count"`
	Collection string `json:"collection"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve passages from ingested pages and documents that are relevant to a query",
	}, s.handleRetrieveContext)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name: "ingest",
			Description: "Load a web page or local file into a collection. " +
				"A collection that already has entries is left unchanged.",
		}, s.handleIngest)
	}
}

// handleRetrieveContext handles the retrieve_context tool invocation.
func (s *Server) handleRetrieveContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveContextInput,
) (*mcp.CallToolResult, RetrieveContextOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveContextOutput{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	k := input.K
	if k <= 0 {
		k = s.ports.K
	}
	collection := s.collection(input.Collection)

	text, err := s.ports.Retrieval.RetrieveContext(ctx, collection, input.Query, k)
	if err != nil {
		return nil, RetrieveContextOutput{}, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, RetrieveContextOutput{Context: text, Collection: collection}, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if strings.TrimSpace(input.Locator) == "" {
		return nil, IngestOutput{}, fmt.Errorf("%w: locator is required", domain.ErrInvalidInput)
	}
	collection := s.collection(input.Collection)

	outcome, err := s.ports.Ingest.Load(ctx, collection, input.Locator)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	output := IngestOutput{
		Status:     outcome.Status.String(),
		Count:      outcome.Count,
		Collection: collection,
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: outcome.String()}},
	}, output, nil
}

func (s *Server) collection(name string) string {
	if name == "" {
		return s.ports.Collection
	}
	return name
}
