package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
	"github.com/custodia-labs/sitechat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of chunk texts sent per embedding call.
const DefaultEmbedBatchSize = 64

// IngestService loads sources and stores their embedded chunks.
type IngestService struct {
	store      driven.CollectionStore
	embedder   driven.EmbeddingService
	fetcher    driven.Fetcher
	normaliser driven.Normaliser
	splitter   driven.Splitter
	batchSize  int
	locks      *keyedMutex
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithEmbedBatchSize sets how many texts go into one EmbedBatch call.
func WithEmbedBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLoader sets the fetch, normalise and split stages used by Load.
func WithLoader(fetcher driven.Fetcher, normaliser driven.Normaliser, splitter driven.Splitter) IngestOption {
	return func(s *IngestService) {
		s.fetcher = fetcher
		s.normaliser = normaliser
		s.splitter = splitter
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store driven.CollectionStore,
	embedder driven.EmbeddingService,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:     store,
		embedder:  embedder,
		batchSize: DefaultEmbedBatchSize,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the source at locator, normalises and splits it, then
// ingests the chunks into collection.
func (s *IngestService) Load(ctx context.Context, collection, locator string) (domain.IngestOutcome, error) {
	defer logger.Stage("Load")()
	logger.Debug("Locator: %s, collection: %s", locator, collection)

	if s.fetcher == nil || s.normaliser == nil || s.splitter == nil {
		return domain.IngestOutcome{}, fmt.Errorf("%w: loader not configured", domain.ErrInvalidInput)
	}

	// A non-empty collection is skipped before any network access.
	count, err := s.store.Count(ctx, collection)
	if err != nil {
		return domain.IngestOutcome{}, fmt.Errorf("count %s: %w", collection, err)
	}
	if count > 0 {
		if err := s.checkModel(ctx, collection); err != nil {
			return domain.IngestOutcome{}, err
		}
		logger.Warn("Collection %s already contains %d entries; %s not loaded", collection, count, locator)
		return domain.Skipped(count), nil
	}

	raw, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return domain.IngestOutcome{}, err
	}
	logger.Debug("Fetched %d bytes (%s)", len(raw.Content), raw.MIMEType)

	doc, err := s.normaliser.Normalise(ctx, raw)
	if err != nil {
		return domain.IngestOutcome{}, fmt.Errorf("normalise %s: %w", locator, err)
	}

	chunks, err := s.splitter.Split(doc)
	if err != nil {
		return domain.IngestOutcome{}, fmt.Errorf("split %s: %w", locator, err)
	}
	logger.Debug("Split into %d chunks with %s splitter", len(chunks), s.splitter.Name())

	return s.Ingest(ctx, collection, chunks)
}

// Ingest embeds and stores chunks in collection unless it already has
// entries. The check and the append run under a per-collection lock so two
// concurrent callers cannot both see an empty collection.
func (s *IngestService) Ingest(ctx context.Context, collection string, chunks []domain.Chunk) (domain.IngestOutcome, error) {
	if collection == "" {
		return domain.IngestOutcome{}, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(collection)
	defer unlock()

	if _, err := s.store.EnsureCollection(ctx, collection, s.embedder.ModelName(), s.embedder.Dimensions()); err != nil {
		return domain.IngestOutcome{}, fmt.Errorf("collection %s: %w", collection, err)
	}

	count, err := s.store.Count(ctx, collection)
	if err != nil {
		return domain.IngestOutcome{}, fmt.Errorf("count %s: %w", collection, err)
	}
	if count > 0 {
		logger.Info("Collection already contains documents: %s has %d entries", collection, count)
		return domain.Skipped(count), nil
	}

	if len(chunks) == 0 {
		return domain.Ingested(0), nil
	}

	entries, err := s.embed(ctx, collection, chunks)
	if err != nil {
		return domain.IngestOutcome{}, err
	}

	if err := s.store.Append(ctx, collection, entries); err != nil {
		return domain.IngestOutcome{}, fmt.Errorf("append to %s: %w", collection, err)
	}

	logger.Info("Documents added to collection: %d chunks in %s", len(entries), collection)
	return domain.Ingested(len(entries)), nil
}

// Drop deletes collection under the ingest lock.
func (s *IngestService) Drop(ctx context.Context, collection string) error {
	unlock := s.locks.Lock(collection)
	defer unlock()

	if err := s.store.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	logger.Info("Collection deleted: %s", collection)
	return nil
}

// embed vectorises chunk texts in batches, preserving order.
func (s *IngestService) embed(ctx context.Context, collection string, chunks []domain.Chunk) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		logger.Debug("Embedding chunks %d-%d of %d", start+1, end, len(chunks))
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, &domain.EmbeddingServiceError{Op: "ingest", Input: collection, Err: err}
		}
		if len(vectors) != len(batch) {
			return nil, &domain.EmbeddingServiceError{
				Op:    "ingest",
				Input: collection,
				Err:   fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors)),
			}
		}

		for i, c := range batch {
			entries = append(entries, domain.Entry{Chunk: c, Embedding: vectors[i]})
		}
	}

	return entries, nil
}

// checkModel reports a mismatch between the collection's recorded model and
// the configured embedder.
func (s *IngestService) checkModel(ctx context.Context, collection string) error {
	c, err := s.store.GetCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	if !c.Compatible(s.embedder.ModelName(), s.embedder.Dimensions()) {
		return fmt.Errorf("collection %s uses %s (%d dims), configured %s: %w",
			collection, c.EmbeddingModel, c.Dimensions, s.embedder.ModelName(), domain.ErrEmbeddingModelMismatch)
	}
	return nil
}
