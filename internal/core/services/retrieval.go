package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
	"github.com/custodia-labs/sitechat/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultK is the number of chunks retrieved when the caller does not say.
const DefaultK = 3

// RetrievalService answers similarity queries over stored collections.
type RetrievalService struct {
	store    driven.CollectionStore
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(store driven.CollectionStore, embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{
		store:    store,
		embedder: embedder,
	}
}

// Query returns at most k chunks of collection most similar to query.
// A collection that does not exist yet is created empty, so querying before
// ingesting yields an empty result rather than an error.
func (s *RetrievalService) Query(ctx context.Context, collection, query string, k int) (domain.RetrievalResult, error) {
	defer logger.Stage("Retrieval")()
	logger.Debug("Query: %q, collection: %s, k: %d", query, collection, k)

	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}

	if _, err := s.store.EnsureCollection(ctx, collection, s.embedder.ModelName(), s.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}

	count, err := s.store.Count(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", collection, err)
	}
	if count == 0 {
		logger.Debug("Collection %s is empty", collection)
		return domain.RetrievalResult{}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.EmbeddingServiceError{Op: "query", Input: query, Err: err}
	}

	result, err := s.store.Search(ctx, collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	logger.Debug("Retrieved %d of %d entries", len(result), count)
	for i, sc := range result {
		logger.Debug("  %d. %s#%d score=%.4f", i+1, sc.Chunk.Locator, sc.Chunk.Index, sc.Score)
	}
	return result, nil
}

// RetrieveContext runs Query and formats the result for a prompt.
func (s *RetrievalService) RetrieveContext(ctx context.Context, collection, query string, k int) (string, error) {
	result, err := s.Query(ctx, collection, query, k)
	if err != nil {
		return "", err
	}
	return FormatContext(query, result), nil
}

// Collections lists the known collections with entry counts.
func (s *RetrievalService) Collections(ctx context.Context) ([]domain.CollectionInfo, error) {
	infos, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return infos, nil
}
