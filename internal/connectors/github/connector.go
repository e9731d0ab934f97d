// Package github provides a connector for files in GitHub repositories.
//
// Locators have the form github://owner/repo/path/to/file[@ref]. Without
// a ref the repository's default branch is read.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sitechat/internal/connectors/filesystem"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

const (
	// Scheme is the locator scheme served.
	Scheme = "github"

	// EnvToken names the variable holding an optional access token.
	EnvToken = "GITHUB_TOKEN"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxFileBytes caps the size of a file read.
	DefaultMaxFileBytes = 1 << 20
)

var (
	// ErrInvalidLocator indicates a locator without owner, repo and path.
	ErrInvalidLocator = errors.New("github: locator must be github://owner/repo/path")

	// ErrNotAFile indicates the path names a directory.
	ErrNotAFile = errors.New("github: path is a directory")
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches single files through the GitHub contents API.
type Connector struct {
	client   *gh.Client
	maxBytes int
}

// Option configures the connector.
type Option func(*Connector) error

// WithToken authenticates requests with a personal or OAuth access token.
func WithToken(token string) Option {
	return func(c *Connector) error {
		if token == "" {
			return nil
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(context.Background(), ts)
		tc.Timeout = DefaultTimeout
		c.client = gh.NewClient(tc)
		return nil
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(base string) Option {
	return func(c *Connector) error {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("github: parse base url: %w", err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// New creates a GitHub connector. The token comes from GITHUB_TOKEN when
// set; anonymous access is limited to public repositories.
func New(opts ...Option) (*Connector, error) {
	c := &Connector{
		client:   gh.NewClient(&http.Client{Timeout: DefaultTimeout}),
		maxBytes: DefaultMaxFileBytes,
	}
	all := append([]Option{WithToken(os.Getenv(EnvToken))}, opts...)
	for _, opt := range all {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Schemes returns the schemes served.
func (c *Connector) Schemes() []string {
	return []string{Scheme}
}

// Fetch downloads the file named by locator.
func (c *Connector) Fetch(ctx context.Context, locator string) (*domain.RawDocument, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}

	var opts *gh.RepositoryContentGetOptions
	if loc.Ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: loc.Ref}
	}

	file, _, _, err := c.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: wrapError(err)}
	}
	if file == nil {
		return nil, &domain.FetchError{Locator: locator, Err: ErrNotAFile}
	}
	if file.GetSize() > c.maxBytes {
		return nil, &domain.FetchError{
			Locator: locator,
			Err:     fmt.Errorf("file exceeds %d bytes", c.maxBytes),
		}
	}

	text, err := file.GetContent()
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}
	content := []byte(text)

	return &domain.RawDocument{
		Locator:  locator,
		MIMEType: filesystem.DetectMIMEType(loc.Path, content),
		Content:  content,
		Metadata: map[string]any{
			"owner":    loc.Owner,
			"repo":     loc.Repo,
			"path":     loc.Path,
			"sha":      file.GetSHA(),
			"html_url": file.GetHTMLURL(),
		},
	}, nil
}

// Locator is a parsed github:// locator.
type Locator struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseLocator splits github://owner/repo/path[@ref].
func ParseLocator(locator string) (Locator, error) {
	rest, ok := strings.CutPrefix(locator, Scheme+"://")
	if !ok {
		return Locator{}, ErrInvalidLocator
	}

	var loc Locator
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest, loc.Ref = rest[:at], rest[at+1:]
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || strings.Trim(parts[2], "/") == "" {
		return Locator{}, ErrInvalidLocator
	}
	loc.Owner, loc.Repo, loc.Path = parts[0], parts[1], strings.Trim(parts[2], "/")
	return loc, nil
}

// wrapError keeps the API message and status of go-github errors.
func wrapError(err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("github: rate limit exceeded, resets at %s", rateErr.Rate.Reset.Format(time.RFC3339))
	}
	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return fmt.Errorf("github: %d %s", apiErr.Response.StatusCode, apiErr.Message)
	}
	return err
}
