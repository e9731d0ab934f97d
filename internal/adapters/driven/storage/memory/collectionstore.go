// Package memory provides in-memory store implementations for tests and
// throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/rank"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]domain.Collection
	entries     map[string][]domain.Entry
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]domain.Collection),
		entries:     make(map[string][]domain.Entry),
	}
}

// EnsureCollection returns the named collection, creating it on first use.
func (s *CollectionStore) EnsureCollection(
	_ context.Context, name, model string, dimensions int,
) (*domain.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		if !c.Compatible(model, dimensions) {
			return nil, fmt.Errorf("collection %s uses %s (%d dims), got %s (%d dims): %w",
				name, c.EmbeddingModel, c.Dimensions, model, dimensions, domain.ErrEmbeddingModelMismatch)
		}
		return &c, nil
	}

	c := domain.Collection{
		Name:           name,
		EmbeddingModel: model,
		Dimensions:     dimensions,
		CreatedAt:      time.Now(),
	}
	s.collections[name] = c
	return &c, nil
}

// GetCollection returns the named collection or domain.ErrNotFound.
func (s *CollectionStore) GetCollection(_ context.Context, name string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// ListCollections returns all collections with entry counts, sorted by name.
func (s *CollectionStore) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(s.collections))
	for name, c := range s.collections {
		infos = append(infos, domain.CollectionInfo{Collection: c, Count: len(s.entries[name])})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Count returns the number of entries in a collection.
func (s *CollectionStore) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[name]), nil
}

// Append stores entries. Either all entries are stored or none.
func (s *CollectionStore) Append(_ context.Context, name string, entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	dims := c.Dimensions
	if dims == 0 && len(entries) > 0 {
		dims = len(entries[0].Embedding)
	}
	for _, e := range entries {
		if len(e.Embedding) != dims {
			return fmt.Errorf("entry %s has %d dims, collection %s has %d: %w",
				e.Chunk.ID, len(e.Embedding), name, dims, domain.ErrEmbeddingModelMismatch)
		}
	}
	if c.Dimensions != dims {
		c.Dimensions = dims
		s.collections[name] = c
	}

	stored := make([]domain.Entry, len(entries))
	for i, e := range entries {
		vec := make([]float32, len(e.Embedding))
		copy(vec, e.Embedding)
		stored[i] = domain.Entry{Chunk: e.Chunk, Embedding: vec}
	}
	s.entries[name] = append(s.entries[name], stored...)
	return nil
}

// DeleteCollection removes a collection and its entries.
func (s *CollectionStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.collections, name)
	delete(s.entries, name)
	return nil
}

// Search returns the k entries most similar to query.
func (s *CollectionStore) Search(
	_ context.Context, name string, query []float32, k int,
) (domain.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank.TopK(query, s.entries[name], k), nil
}

// Close releases resources (no-op for memory store).
func (s *CollectionStore) Close() error {
	return nil
}
