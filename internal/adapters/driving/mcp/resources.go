package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sitechat resources.
	uriScheme = "sitechat://"
)

// collectionInfo is the JSON shape of a collection resource.
type collectionInfo struct {
	Name           string    `json:"name"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimensions     int       `json:"dimensions"`
	Count          int       `json:"count"`
	CreatedAt      time.Time `json:"created_at"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Collections with their embedding model and entry count",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{name}",
		Name:        "collection",
		Description: "A single collection",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)
}

// handleCollectionsResource returns all collections.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos, err := s.ports.Retrieval.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	out := make([]collectionInfo, len(infos))
	for i, info := range infos {
		out[i] = toCollectionInfo(info)
	}
	return jsonResource(req.Params.URI, out)
}

// handleCollectionResource returns one collection by name.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCollectionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	infos, err := s.ports.Retrieval.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	for _, info := range infos {
		if info.Name == name {
			return jsonResource(req.Params.URI, toCollectionInfo(info))
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func toCollectionInfo(info domain.CollectionInfo) collectionInfo {
	return collectionInfo{
		Name:           info.Name,
		EmbeddingModel: info.EmbeddingModel,
		Dimensions:     info.Dimensions,
		Count:          info.Count,
		CreatedAt:      info.CreatedAt,
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollectionName extracts the name from sitechat://collections/{name}.
func extractCollectionName(uri string) string {
	const prefix = uriScheme + "collections/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
