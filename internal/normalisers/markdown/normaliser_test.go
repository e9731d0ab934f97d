package markdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Contains(t, New().SupportedMIMETypes(), "text/markdown")
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Locator:  "https://example.com/README.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Getting Started\n\nInstall with **one** command.\n\n## Usage\n\n- run `sitechat ask`\n- read the [docs](https://example.com/docs)\n"),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", doc.Title)
	assert.Equal(t, "Getting Started\n\nInstall with one command.\n\nUsage\n\nrun sitechat ask\nread the docs", doc.Content)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		content string
		want    string
	}{
		{"first h1", "a.md", "intro\n# Real Title #\ntext", "Real Title"},
		{"front matter wins", "a.md", "---\ntitle: \"From Front\"\ndate: 2024-01-01\n---\n# Heading\n", "From Front"},
		{"h2 is not a title", "notes-2024.md", "## Section\ntext", "notes 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New().Normalise(context.Background(), &domain.RawDocument{
				Locator: tt.locator, MIMEType: "text/markdown", Content: []byte(tt.content),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Title)
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"code fence keeps body", "```go\nfmt.Println(1)\n```", "fmt.Println(1)"},
		{"image alt text", "![diagram](d.png)", "diagram"},
		{"reference link", "see [the guide][1]\n\n[1]: https://example.com", "see the guide"},
		{"blockquote", "> quoted line", "quoted line"},
		{"rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
		{"numbered list", "1. one\n2. two", "one\ntwo"},
		{"italic underscore", "an _emphasised_ word", "an emphasised word"},
		{"snake_case survives", "use max_steps here", "use max_steps here"},
		{"inline html", "a <br/> b", "a  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
