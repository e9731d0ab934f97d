// Package web provides a connector that fetches pages over HTTP(S).
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/logger"
	"github.com/custodia-labs/sitechat/internal/normalisers"
)

// Defaults for the web connector.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 20 << 20
	DefaultUserAgent    = "sitechat/1.0 (+https://github.com/custodia-labs/sitechat)"

	// EnvUserAgent overrides the User-Agent header when set.
	EnvUserAgent = "USER_AGENT"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches http and https locators with a single GET.
// Failures are reported once as *domain.FetchError; nothing is retried.
type Connector struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *rate.Limiter
}

// Option configures the connector.
type Option func(*Connector)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Connector) {
		w.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(w *Connector) {
		if ua != "" {
			w.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps the response size read.
func WithMaxBodyBytes(n int64) Option {
	return func(w *Connector) {
		if n > 0 {
			w.maxBytes = n
		}
	}
}

// WithRateLimit throttles requests to rps per second.
func WithRateLimit(rps float64) Option {
	return func(w *Connector) {
		if rps > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a web connector. The User-Agent comes from USER_AGENT when
// set, else DefaultUserAgent.
func New(opts ...Option) *Connector {
	ua := os.Getenv(EnvUserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	w := &Connector{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: ua,
		maxBytes:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Schemes returns the schemes served.
func (w *Connector) Schemes() []string {
	return []string{"http", "https"}
}

// Fetch GETs locator. The MIME type comes from Content-Type, sniffed from
// the body when the header is missing.
func (w *Connector) Fetch(ctx context.Context, locator string) (*domain.RawDocument, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, &domain.FetchError{Locator: locator, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	logger.Debug("GET %s", locator)
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{Locator: locator, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, w.maxBytes+1))
	if err != nil {
		return nil, &domain.FetchError{Locator: locator, Err: err}
	}
	if int64(len(body)) > w.maxBytes {
		return nil, &domain.FetchError{Locator: locator, Err: errors.New("response exceeds size limit")}
	}

	mimeType := resp.Header.Get("Content-Type")
	if _, _, err := mime.ParseMediaType(mimeType); err != nil {
		mimeType = http.DetectContentType(body)
	}
	logger.Debug("Fetched %s: %d bytes, %s", locator, len(body), mimeType)

	return &domain.RawDocument{
		Locator:  locator,
		MIMEType: mimeType,
		Content:  body,
		Metadata: map[string]any{
			normalisers.MetadataFetchedAt: time.Now(),
			"status":                      resp.StatusCode,
			"final_url":                   resp.Request.URL.String(),
		},
	}, nil
}
