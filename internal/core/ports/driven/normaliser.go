package driven

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// Normaliser transforms raw documents into plain document text.
// Each normaliser handles specific MIME types (e.g., HTML, PDF).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise extracts text content from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}
