package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitechat/internal/core/domain"
)

func makeChunks(locator string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		text := fmt.Sprintf("chunk %d of %s", i, locator)
		chunks[i] = domain.Chunk{
			ID:      fmt.Sprintf("%s-%d", locator, i),
			Locator: locator,
			Index:   i,
			Text:    text,
			End:     len(text),
		}
	}
	return chunks
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests into empty collection", func(t *testing.T) {
		store := memory.NewCollectionStore()
		embedder := newMockEmbeddingService()
		svc := NewIngestService(store, embedder)

		outcome, err := svc.Ingest(ctx, "docs", makeChunks("https://example.com", 5))
		require.NoError(t, err)
		assert.Equal(t, domain.Ingested(5), outcome)

		n, err := store.Count(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		c, err := store.GetCollection(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, "mock-embed", c.EmbeddingModel)
		assert.Equal(t, 4, c.Dimensions)
	})

	t.Run("skips non-empty collection without embedding", func(t *testing.T) {
		store := memory.NewCollectionStore()
		embedder := newMockEmbeddingService()
		svc := NewIngestService(store, embedder)

		_, err := svc.Ingest(ctx, "docs", makeChunks("https://example.com", 3))
		require.NoError(t, err)
		batched := embedder.totalBatched()

		outcome, err := svc.Ingest(ctx, "docs", makeChunks("https://other.example", 7))
		require.NoError(t, err)
		assert.Equal(t, domain.Skipped(3), outcome)
		assert.Equal(t, batched, embedder.totalBatched())

		n, _ := store.Count(ctx, "docs")
		assert.Equal(t, 3, n)
	})

	t.Run("batches embedding calls", func(t *testing.T) {
		store := memory.NewCollectionStore()
		embedder := newMockEmbeddingService()
		svc := NewIngestService(store, embedder, WithEmbedBatchSize(64))

		outcome, err := svc.Ingest(ctx, "docs", makeChunks("doc", 150))
		require.NoError(t, err)
		assert.Equal(t, 150, outcome.Count)
		assert.Equal(t, []int{64, 64, 22}, embedder.batchSizes)
	})

	t.Run("embedding failure stores nothing", func(t *testing.T) {
		store := memory.NewCollectionStore()
		embedder := newMockEmbeddingService()
		embedder.batchErr = errors.New("connection refused")
		svc := NewIngestService(store, embedder)

		_, err := svc.Ingest(ctx, "docs", makeChunks("doc", 3))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrEmbeddingService))

		var embErr *domain.EmbeddingServiceError
		require.True(t, errors.As(err, &embErr))
		assert.Equal(t, "ingest", embErr.Op)
		assert.Equal(t, "docs", embErr.Input)

		n, _ := store.Count(ctx, "docs")
		assert.Zero(t, n)
	})

	t.Run("model mismatch", func(t *testing.T) {
		store := memory.NewCollectionStore()
		_, err := store.EnsureCollection(ctx, "docs", "other-model", 4)
		require.NoError(t, err)

		svc := NewIngestService(store, newMockEmbeddingService())
		_, err = svc.Ingest(ctx, "docs", makeChunks("doc", 1))
		assert.True(t, errors.Is(err, domain.ErrEmbeddingModelMismatch))
	})

	t.Run("empty collection name", func(t *testing.T) {
		svc := NewIngestService(memory.NewCollectionStore(), newMockEmbeddingService())
		_, err := svc.Ingest(ctx, "", makeChunks("doc", 1))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestIngestService_ConcurrentIngestIsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCollectionStore()
	embedder := newMockEmbeddingService()
	svc := NewIngestService(store, embedder)

	const callers = 8
	outcomes := make([]domain.IngestOutcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := svc.Ingest(ctx, "docs", makeChunks("doc", 4))
			assert.NoError(t, err)
			outcomes[i] = o
		}(i)
	}
	wg.Wait()

	ingested := 0
	for _, o := range outcomes {
		if o.Status == domain.IngestStatusIngested {
			ingested++
			continue
		}
		assert.Equal(t, domain.Skipped(4), o)
	}
	assert.Equal(t, 1, ingested)

	n, _ := store.Count(ctx, "docs")
	assert.Equal(t, 4, n)
}

func TestIngestService_Load(t *testing.T) {
	ctx := context.Background()
	page := &domain.RawDocument{
		Locator:  "https://example.com",
		MIMEType: "text/plain",
		Content:  []byte("first line\nsecond line\nthird line"),
	}

	newService := func() (*IngestService, *mockFetcher, *memory.CollectionStore) {
		fetcher := &mockFetcher{docs: map[string]*domain.RawDocument{page.Locator: page}}
		store := memory.NewCollectionStore()
		svc := NewIngestService(store, newMockEmbeddingService(),
			WithLoader(fetcher, passthroughNormaliser{}, lineSplitter{}))
		return svc, fetcher, store
	}

	t.Run("fetches splits and ingests", func(t *testing.T) {
		svc, fetcher, store := newService()

		outcome, err := svc.Load(ctx, "docs", page.Locator)
		require.NoError(t, err)
		assert.Equal(t, domain.Ingested(3), outcome)
		assert.Equal(t, 1, fetcher.calls)

		result, err := store.Search(ctx, "docs", []float32{1, 1, 1, 1}, 3)
		require.NoError(t, err)
		assert.Len(t, result, 3)
	})

	t.Run("second load skips before fetching", func(t *testing.T) {
		svc, fetcher, _ := newService()

		_, err := svc.Load(ctx, "docs", page.Locator)
		require.NoError(t, err)

		outcome, err := svc.Load(ctx, "docs", "https://unrelated.example")
		require.NoError(t, err)
		assert.Equal(t, domain.Skipped(3), outcome)
		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		svc, _, store := newService()

		_, err := svc.Load(ctx, "docs", "https://missing.example")
		assert.True(t, errors.Is(err, domain.ErrFetch))

		n, _ := store.Count(ctx, "docs")
		assert.Zero(t, n)
	})

	t.Run("empty document propagates", func(t *testing.T) {
		fetcher := &mockFetcher{docs: map[string]*domain.RawDocument{
			"blank": {Locator: "blank", MIMEType: "text/plain", Content: []byte(strings.Repeat("\n", 4))},
		}}
		svc := NewIngestService(memory.NewCollectionStore(), newMockEmbeddingService(),
			WithLoader(fetcher, passthroughNormaliser{}, lineSplitter{}))

		_, err := svc.Load(ctx, "docs", "blank")
		assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
	})

	t.Run("without loader", func(t *testing.T) {
		svc := NewIngestService(memory.NewCollectionStore(), newMockEmbeddingService())
		_, err := svc.Load(ctx, "docs", page.Locator)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestIngestService_Drop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCollectionStore()
	embedder := newMockEmbeddingService()
	svc := NewIngestService(store, embedder)

	_, err := svc.Ingest(ctx, "docs", makeChunks("https://example.com", 2))
	require.NoError(t, err)

	require.NoError(t, svc.Drop(ctx, "docs"))

	outcome, err := svc.Ingest(ctx, "docs", makeChunks("https://example.com/new", 3))
	require.NoError(t, err)
	assert.Equal(t, domain.Ingested(3), outcome)

	assert.True(t, errors.Is(svc.Drop(ctx, "missing"), domain.ErrNotFound))
}
