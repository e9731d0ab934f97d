package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestOutcome(t *testing.T) {
	t.Run("ingested", func(t *testing.T) {
		o := Ingested(4)
		assert.Equal(t, IngestStatusIngested, o.Status)
		assert.Equal(t, 4, o.Count)
		assert.Equal(t, "Ingested 4 chunks", o.String())
	})

	t.Run("skipped", func(t *testing.T) {
		o := Skipped(2)
		assert.Equal(t, IngestStatusSkipped, o.Status)
		assert.Equal(t, 2, o.Count)
		assert.Equal(t, "Skipped (collection already has 2 entries)", o.String())
	})
}

func TestIngestStatus_String(t *testing.T) {
	assert.Equal(t, "ingested", IngestStatusIngested.String())
	assert.Equal(t, "skipped", IngestStatusSkipped.String())
	assert.Equal(t, "unknown", IngestStatus(99).String())
}

func TestCollection_Compatible(t *testing.T) {
	c := &Collection{Name: "docs", EmbeddingModel: "text-embedding-3-large", Dimensions: 3072}

	assert.True(t, c.Compatible("text-embedding-3-large", 3072))
	assert.False(t, c.Compatible("text-embedding-3-small", 3072))
	assert.False(t, c.Compatible("text-embedding-3-large", 1536))
	assert.True(t, c.Compatible("text-embedding-3-large", 0))

	unknown := &Collection{Name: "local", EmbeddingModel: "custom-embed"}
	assert.True(t, unknown.Compatible("custom-embed", 512))
	assert.False(t, unknown.Compatible("other-embed", 0))
}

func TestChunk_Len(t *testing.T) {
	c := Chunk{Start: 800, End: 1800}
	assert.Equal(t, 1000, c.Len())
}
