package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

func TestExtractCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid collection URI", "sitechat://collections/generic_info", "generic_info"},
		{"invalid prefix", "file://collections/generic_info", ""},
		{"nested path", "sitechat://collections/a/b", ""},
		{"list URI", "sitechat://collections", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractCollectionName(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func testCollections() []domain.CollectionInfo {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []domain.CollectionInfo{
		{
			Collection: domain.Collection{
				Name: "generic_info", EmbeddingModel: "text-embedding-3-large", Dimensions: 3072, CreatedAt: created,
			},
			Count: 42,
		},
		{
			Collection: domain.Collection{
				Name: "handbook", EmbeddingModel: "nomic-embed-text", Dimensions: 768, CreatedAt: created,
			},
			Count: 7,
		},
	}
}

func TestServer_handleCollectionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists collections", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{collections: testCollections()}})
		require.NoError(t, err)

		result, err := server.handleCollectionsResource(ctx, makeReadResourceRequest("sitechat://collections"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, text, `"name": "generic_info"`)
		assert.Contains(t, text, `"count": 42`)
		assert.Contains(t, text, `"embedding_model": "nomic-embed-text"`)
	})

	t.Run("empty store", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleCollectionsResource(ctx, makeReadResourceRequest("sitechat://collections"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("list failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: errors.New("database error")}})
		require.NoError(t, err)

		_, err = server.handleCollectionsResource(ctx, makeReadResourceRequest("sitechat://collections"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing collections")
	})
}

func TestServer_handleCollectionResource(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{collections: testCollections()}})
	require.NoError(t, err)

	t.Run("known collection", func(t *testing.T) {
		result, err := server.handleCollectionResource(ctx, makeReadResourceRequest("sitechat://collections/handbook"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"name": "handbook"`)
		assert.Contains(t, result.Contents[0].Text, `"dimensions": 768`)
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := server.handleCollectionResource(ctx, makeReadResourceRequest("sitechat://collections/missing"))
		assert.Error(t, err)
	})

	t.Run("invalid URI", func(t *testing.T) {
		_, err := server.handleCollectionResource(ctx, makeReadResourceRequest("sitechat://other"))
		assert.Error(t, err)
	})
}
