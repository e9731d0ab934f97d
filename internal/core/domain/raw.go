package domain

// RawDocument represents opaque bytes fetched by a connector.
// It is the connector's output before normalisation.
type RawDocument struct {
	// Locator is the original location (URL, file path).
	Locator string

	// MIMEType is the content type (e.g., "text/html").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}
