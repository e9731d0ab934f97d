package normalisers

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// MetadataFetchedAt is the raw metadata key connectors set to the fetch time.
const MetadataFetchedAt = "fetched_at"

// NewDocument builds a document from raw, carrying over locator, MIME type
// and fetch time. An empty title falls back to TitleFromLocator.
func NewDocument(raw *domain.RawDocument, title, content string) *domain.Document {
	if title == "" {
		title = TitleFromLocator(raw.Locator)
	}

	fetchedAt, ok := raw.Metadata[MetadataFetchedAt].(time.Time)
	if !ok {
		fetchedAt = time.Now()
	}

	return &domain.Document{
		Locator:   raw.Locator,
		Title:     title,
		Content:   content,
		MIMEType:  BaseMIMEType(raw.MIMEType),
		FetchedAt: fetchedAt,
	}
}

// TitleFromLocator derives a readable title from the last path element of
// a URL or file path, falling back to the host.
func TitleFromLocator(locator string) string {
	p := locator
	host := ""
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" {
		p = u.Path
		host = u.Host
	}

	name := path.Base(strings.TrimSuffix(strings.ReplaceAll(p, "\\", "/"), "/"))
	if name == "." || name == "/" || name == "" {
		return host
	}
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
