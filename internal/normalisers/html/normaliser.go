package html

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct {
	keepChrome bool
}

// Option configures the HTML normaliser.
type Option func(*Normaliser)

// WithPageChrome keeps <nav>, <header>, <footer> and <aside> text.
func WithPageChrome() Option {
	return func(n *Normaliser) {
		n.keepChrome = true
	}
}

// New creates a new HTML normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Normalise converts an HTML document to plain text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: raw document is nil", domain.ErrInvalidInput)
	}

	rawContent := string(raw.Content)
	title := extractTitle(rawContent)
	content := n.stripHTML(rawContent)

	return normalisers.NewDocument(raw, title, content), nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title(\s[^>]*)?>(.*?)</title>`)
	h1Tag             = regexp.MustCompile(`(?is)<h1(\s[^>]*)?>(.*?)</h1>`)
	droppedTags       = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg|template|iframe)(\s[^>]*)?>.*?</(script|style|noscript|head|svg|template|iframe)>`)
	chromeTags        = regexp.MustCompile(`(?is)<(nav|header|footer|aside)(\s[^>]*)?>.*?</(nav|header|footer|aside)>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|ul|ol|table|section|article|main|blockquote|pre|figure|form)(\s[^>]*)?>`)
	lineElements      = regexp.MustCompile(`(?i)</(li|tr|dt|dd)>|<br\s*/?>|<hr\s*/?>`)
	cellElements      = regexp.MustCompile(`(?i)</t[dh]>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t\f\v\r\x{00a0}]+`)
	multiBlankLines   = regexp.MustCompile(`\n{3,}`)
	paragraphBoundary = "\x00"
)

// extractTitle returns the <title> text, else the first <h1>, else "".
func extractTitle(content string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		if m := re.FindStringSubmatch(content); len(m) > 2 {
			title := strings.TrimSpace(html.UnescapeString(allTags.ReplaceAllString(m[2], "")))
			title = multiSpaces.ReplaceAllString(title, " ")
			if title != "" {
				return title
			}
		}
	}
	return ""
}

// stripHTML removes markup and returns readable text. Block elements are
// separated by a blank line and list items or rows by a line break.
func (n *Normaliser) stripHTML(content string) string {
	content = droppedTags.ReplaceAllString(content, "")
	if !n.keepChrome {
		content = chromeTags.ReplaceAllString(content, "")
	}
	content = htmlComments.ReplaceAllString(content, "")

	// Source newlines carry no meaning in HTML.
	content = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(content)

	content = blockElements.ReplaceAllString(content, paragraphBoundary)
	content = lineElements.ReplaceAllString(content, "\n")
	content = cellElements.ReplaceAllString(content, " ")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = strings.ReplaceAll(content, paragraphBoundary, "\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
	}
	content = strings.Join(lines, "\n")
	content = multiBlankLines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
