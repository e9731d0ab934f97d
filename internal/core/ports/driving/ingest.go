package driving

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// IngestService loads sources into collections.
type IngestService interface {
	// Load fetches, normalises and splits the source at locator, then
	// ingests the chunks into collection.
	Load(ctx context.Context, collection, locator string) (domain.IngestOutcome, error)

	// Ingest embeds and stores chunks unless the collection already has
	// entries, in which case it returns Skipped with the existing count.
	Ingest(ctx context.Context, collection string, chunks []domain.Chunk) (domain.IngestOutcome, error)

	// Drop deletes collection so the next load ingests afresh.
	Drop(ctx context.Context, collection string) error
}
