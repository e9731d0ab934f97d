package domain

import (
	"fmt"
	"time"
)

// DefaultCollection is the collection name used when none is given.
const DefaultCollection = "generic_info"

// Collection is a named, persistent set of embedded chunks.
// The embedding model and dimensionality are fixed when the collection is
// created; vectors from any other model are rejected.
type Collection struct {
	// Name identifies the collection.
	Name string

	// EmbeddingModel is the model identifier used for every vector in the collection.
	EmbeddingModel string

	// Dimensions is the vector size of the embedding model.
	Dimensions int

	// CreatedAt is when the collection was first used.
	CreatedAt time.Time
}

// Compatible reports whether vectors from the given model can be stored in
// or compared against this collection. Zero dimensions means unknown and
// only the model name is compared.
func (c *Collection) Compatible(model string, dimensions int) bool {
	if c.EmbeddingModel != model {
		return false
	}
	return dimensions == 0 || c.Dimensions == 0 || c.Dimensions == dimensions
}

// CollectionInfo is a collection together with its entry count.
type CollectionInfo struct {
	Collection
	Count int
}

// IngestStatus describes what an ingestion call did.
type IngestStatus int

const (
	// IngestStatusIngested means the batch was embedded and stored.
	IngestStatusIngested IngestStatus = iota

	// IngestStatusSkipped means the collection already had entries.
	IngestStatusSkipped
)

// String returns the string representation.
func (s IngestStatus) String() string {
	switch s {
	case IngestStatusIngested:
		return "ingested"
	case IngestStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IngestOutcome is the result of an ingestion call.
// Count is the number of new entries for Ingested and the existing entry
// count for Skipped.
type IngestOutcome struct {
	Status IngestStatus
	Count  int
}

// Ingested returns an outcome reporting n newly stored entries.
func Ingested(n int) IngestOutcome {
	return IngestOutcome{Status: IngestStatusIngested, Count: n}
}

// Skipped returns an outcome reporting a non-empty collection of n entries.
func Skipped(n int) IngestOutcome {
	return IngestOutcome{Status: IngestStatusSkipped, Count: n}
}

// String returns a short human-readable summary.
func (o IngestOutcome) String() string {
	if o.Status == IngestStatusSkipped {
		return fmt.Sprintf("Skipped (collection already has %d entries)", o.Count)
	}
	return fmt.Sprintf("Ingested %d chunks", o.Count)
}

// ScoredChunk is a retrieved chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity between query and chunk vectors.
	Score float64
}

// RetrievalResult is an ordered sequence of scored chunks, most relevant first.
type RetrievalResult []ScoredChunk
