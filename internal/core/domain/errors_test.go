package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmptyDocument", ErrEmptyDocument},
		{"ErrEmbeddingService", ErrEmbeddingService},
		{"ErrFetch", ErrFetch},
		{"ErrEmbeddingModelMismatch", ErrEmbeddingModelMismatch},
		{"ErrUnknownTool", ErrUnknownTool},
		{"ErrMaxStepsExceeded", ErrMaxStepsExceeded},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestEmptyDocumentError(t *testing.T) {
	err := fmt.Errorf("split: %w", &EmptyDocumentError{Locator: "https://example.com"})

	assert.True(t, errors.Is(err, ErrEmptyDocument))
	assert.False(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "https://example.com")

	var target *EmptyDocumentError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "https://example.com", target.Locator)
}

func TestEmbeddingServiceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("retrieve: %w", &EmbeddingServiceError{Op: "query", Input: "hello", Err: cause})

	assert.True(t, errors.Is(err, ErrEmbeddingService))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "query")
	assert.Contains(t, err.Error(), `"hello"`)
	assert.Contains(t, err.Error(), "connection refused")

	var target *EmbeddingServiceError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "query", target.Op)
	assert.Equal(t, "hello", target.Input)
}

func TestFetchError(t *testing.T) {
	cause := errors.New("404 Not Found")
	err := &FetchError{Locator: "https://example.com/missing", Err: cause}

	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrEmbeddingService))
	assert.Equal(t, "fetch https://example.com/missing: 404 Not Found", err.Error())
}
