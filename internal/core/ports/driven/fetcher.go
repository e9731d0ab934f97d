package driven

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// Fetcher retrieves raw content for a source locator.
// Failures are reported as *domain.FetchError and are not retried.
type Fetcher interface {
	// Fetch returns the raw bytes and MIME type found at locator.
	Fetch(ctx context.Context, locator string) (*domain.RawDocument, error)
}

// Connector is a Fetcher bound to one or more locator schemes.
type Connector interface {
	Fetcher

	// Schemes returns the URL schemes this connector serves ("https", "file").
	Schemes() []string
}
