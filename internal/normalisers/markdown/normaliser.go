// Package markdown provides a Normaliser for Markdown documents.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/normalisers"
	"github.com/custodia-labs/sitechat/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Normalise converts Markdown to plain text. Formatting markers are removed
// but code block contents and link text are kept, since both are often what
// a question is about.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: raw document is nil", domain.ErrInvalidInput)
	}

	content := plaintext.CleanText(string(raw.Content))
	front, body := splitFrontMatter(content)

	title := frontMatterTitle(front)
	if title == "" {
		title = extractTitle(body)
	}

	return normalisers.NewDocument(raw, title, stripMarkdown(body)), nil
}

// Pre-compiled regular expressions for Markdown parsing.
var (
	h1Line       = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)
	fenceLine    = regexp.MustCompile("(?m)^\\s*(```|~~~).*$\n?")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	refLinks     = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	refDefs      = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]:\s+\S+.*$`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+(.*?)\s*#*\s*$`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	inlineCode   = regexp.MustCompile("`([^`\n]+)`")
	blockquote   = regexp.MustCompile(`(?m)^\s*>\s?`)
	rule         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	listMarkers  = regexp.MustCompile(`(?m)^(\s*)([-*+]|\d+[.)])\s+`)
	htmlTags     = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
	frontTitle   = regexp.MustCompile(`(?m)^title:\s*["']?(.*?)["']?\s*$`)
	frontMatterR = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n`)
)

// splitFrontMatter separates a leading YAML front matter block.
func splitFrontMatter(content string) (front, body string) {
	if m := frontMatterR.FindStringSubmatchIndex(content); m != nil {
		return content[m[2]:m[3]], content[m[1]:]
	}
	return "", content
}

func frontMatterTitle(front string) string {
	if m := frontTitle.FindStringSubmatch(front); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractTitle returns the first level-one heading, or "".
func extractTitle(content string) string {
	if m := h1Line.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// stripMarkdown removes common Markdown syntax, keeping the words.
func stripMarkdown(content string) string {
	content = fenceLine.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = refLinks.ReplaceAllString(content, "$1")
	content = refDefs.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = rule.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "$1")
	content = htmlTags.ReplaceAllString(content, "")
	content = blankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
