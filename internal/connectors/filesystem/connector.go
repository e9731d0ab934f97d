// Package filesystem provides a connector for local files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/normalisers"
)

// DefaultMaxFileBytes caps the size of a file read.
const DefaultMaxFileBytes = 50 << 20

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// extensionTypes covers extensions the platform MIME table often lacks.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".rst":      "text/x-rst",
	".csv":      "text/csv",
	".json":     "application/json",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Connector reads files named by a bare path or a file:// URL.
type Connector struct {
	maxBytes int64
}

// New creates a filesystem connector.
func New() *Connector {
	return &Connector{maxBytes: DefaultMaxFileBytes}
}

// Schemes returns the schemes served.
func (c *Connector) Schemes() []string {
	return []string{"file"}
}

// Fetch reads the file at locator.
func (c *Connector) Fetch(_ context.Context, locator string) (*domain.RawDocument, error) {
	path, err := ResolvePath(locator)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}
	if info.IsDir() {
		return nil, &domain.FetchError{Locator: locator, Err: errors.New("is a directory")}
	}
	if info.Size() > c.maxBytes {
		return nil, &domain.FetchError{Locator: locator, Err: fmt.Errorf("file exceeds %d bytes", c.maxBytes)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}

	return &domain.RawDocument{
		Locator:  locator,
		MIMEType: DetectMIMEType(path, content),
		Content:  content,
		Metadata: map[string]any{
			normalisers.MetadataFetchedAt: info.ModTime(),
			"path":                        path,
			"size":                        info.Size(),
		},
	}, nil
}

// ResolvePath converts a file:// URL or bare path to a local path.
// A leading ~ expands to the home directory.
func ResolvePath(locator string) (string, error) {
	path := locator
	if strings.HasPrefix(strings.ToLower(locator), "file://") {
		u, err := url.Parse(locator)
		if err != nil {
			return "", err
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("remote file host %q", u.Host)
		}
		path = u.Path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == "" {
		return "", errors.New("empty path")
	}
	return filepath.Clean(path), nil
}

// DetectMIMEType guesses the type from the extension, falling back to
// content sniffing.
func DetectMIMEType(path string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(content)
}
