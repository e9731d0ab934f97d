package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

func TestFetch_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>T</title><p>Hi</p></html>"))
	}))
	defer srv.Close()

	raw, err := New(WithUserAgent("test-agent")).Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, srv.URL+"/page", raw.Locator)
	assert.Equal(t, "text/html; charset=utf-8", raw.MIMEType)
	assert.Contains(t, string(raw.Content), "<p>Hi</p>")
	assert.IsType(t, time.Time{}, raw.Metadata["fetched_at"])
}

func TestFetch_UserAgentFromEnvironment(t *testing.T) {
	t.Setenv(EnvUserAgent, "env-agent")
	assert.Equal(t, "env-agent", New().userAgent)

	t.Setenv(EnvUserAgent, "")
	assert.Equal(t, DefaultUserAgent, New().userAgent)
}

func TestFetch_SniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>x</body></html>"))
	}))
	defer srv.Close()

	raw, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw.MIMEType, "text/html"), raw.MIMEType)
}

func TestFetch_Errors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	big := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer big.Close()

	tests := []struct {
		name    string
		conn    *Connector
		locator string
	}{
		{"non-2xx status", New(), notFound.URL},
		{"body too large", New(WithMaxBodyBytes(10)), big.URL},
		{"unreachable host", New(WithHTTPClient(&http.Client{Timeout: time.Second})), "http://127.0.0.1:1/"},
		{"malformed url", New(), "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.conn.Fetch(context.Background(), tt.locator)
			assert.Nil(t, raw)

			var fe *domain.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.locator, fe.Locator)
			assert.True(t, errors.Is(err, domain.ErrFetch))
		})
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithRateLimit(1)).Fetch(ctx, srv.URL)
	assert.True(t, errors.Is(err, domain.ErrFetch))
}

func TestSchemes(t *testing.T) {
	assert.Equal(t, []string{"http", "https"}, New().Schemes())
}
