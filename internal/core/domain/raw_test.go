package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawDocument_Fields(t *testing.T) {
	raw := RawDocument{
		Locator:  "https://example.com",
		MIMEType: "text/html; charset=utf-8",
		Content:  []byte("<html><body>Hello</body></html>"),
		Metadata: map[string]any{"status": 200},
	}

	assert.Equal(t, "https://example.com", raw.Locator)
	assert.Equal(t, "text/html; charset=utf-8", raw.MIMEType)
	assert.Equal(t, "<html><body>Hello</body></html>", string(raw.Content))
	assert.Equal(t, 200, raw.Metadata["status"])
}

func TestRawDocument_BinaryContent(t *testing.T) {
	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}
	raw := RawDocument{Locator: "/tmp/report.pdf", MIMEType: "application/pdf", Content: content}

	assert.Equal(t, content, raw.Content)
}

func TestRawDocument_NilMetadata(t *testing.T) {
	raw := RawDocument{Locator: "notes.txt"}

	assert.Nil(t, raw.Metadata)
	assert.Nil(t, raw.Content)
}
