package driving

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// RetrievalService answers similarity queries against a collection.
type RetrievalService interface {
	// Query returns at most k chunks most similar to query.
	// An empty collection yields an empty result, not an error.
	Query(ctx context.Context, collection, query string, k int) (domain.RetrievalResult, error)

	// RetrieveContext runs Query and formats the result for a prompt.
	RetrieveContext(ctx context.Context, collection, query string, k int) (string, error)

	// Collections lists the known collections with entry counts.
	Collections(ctx context.Context) ([]domain.CollectionInfo, error)
}
