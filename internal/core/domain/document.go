package domain

import "time"

// Document is the normalised text of a single fetch.
// It is immutable once produced and discarded after chunking.
type Document struct {
	// Locator is where the content came from (URL, file path).
	Locator string

	// Title is the human-readable title, when one could be extracted.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// MIMEType is the type of the raw content the document was built from.
	MIMEType string

	// FetchedAt is when the raw content was retrieved.
	FetchedAt time.Time
}

// Chunk is a bounded window of document text, the unit of embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Locator is the source locator of the parent document.
	Locator string

	// Index is the sequence index within the document, starting at 0.
	Index int

	// Text is the exact substring of the document covered by this chunk.
	Text string

	// Start is the rune offset of the first character of Text in the document.
	Start int

	// End is the rune offset one past the last character of Text.
	End int
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Entry is a chunk stored alongside its embedding vector.
type Entry struct {
	Chunk     Chunk
	Embedding []float32
}
