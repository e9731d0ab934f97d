package driven

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// CollectionStore persists named collections of embedded chunks and
// answers nearest-neighbour queries over them.
type CollectionStore interface {
	// EnsureCollection returns the named collection, creating it with the
	// given embedding model and dimensions on first use. If it exists with a
	// different model or dimensions, it returns domain.ErrEmbeddingModelMismatch.
	EnsureCollection(ctx context.Context, name, model string, dimensions int) (*domain.Collection, error)

	// GetCollection returns domain.ErrNotFound if the collection does not exist.
	GetCollection(ctx context.Context, name string) (*domain.Collection, error)

	// ListCollections returns all collections with their entry counts, by name.
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)

	// Count returns the number of entries in a collection (0 if it does not exist).
	Count(ctx context.Context, name string) (int, error)

	// DeleteCollection removes a collection and all its entries.
	// It returns domain.ErrNotFound if the collection does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// Append stores entries in one atomic batch. A collection created with
	// unknown (zero) dimensions adopts the size of the first batch.
	Append(ctx context.Context, name string, entries []domain.Entry) error

	// Search returns the k entries most similar to query by cosine
	// similarity, ordered by score descending, then chunk index ascending,
	// then locator ascending.
	Search(ctx context.Context, name string, query []float32, k int) (domain.RetrievalResult, error)

	// Close releases resources.
	Close() error
}
