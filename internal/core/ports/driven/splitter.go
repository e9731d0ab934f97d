package driven

import "github.com/custodia-labs/sitechat/internal/core/domain"

// Splitter divides document content into overlapping chunks.
type Splitter interface {
	// Name returns the splitter name for logging and configuration.
	Name() string

	// Split returns chunks in document order.
	// Empty or whitespace-only content yields *domain.EmptyDocumentError.
	Split(doc *domain.Document) ([]domain.Chunk, error)
}
