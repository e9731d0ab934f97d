package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector scheme or MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyDocument indicates a document has no text to chunk.
	ErrEmptyDocument = errors.New("empty document")

	// ErrEmbeddingService indicates the embedding provider failed.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrFetch indicates a source could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrEmbeddingModelMismatch indicates a collection was created with a
	// different embedding model or dimensionality than the one in use.
	ErrEmbeddingModelMismatch = errors.New("embedding model mismatch")

	// ErrUnknownTool indicates the model asked for a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMaxStepsExceeded indicates the agent kept calling tools without answering.
	ErrMaxStepsExceeded = errors.New("agent exceeded maximum steps")

	// ErrLLMUnavailable indicates the chat model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// EmptyDocumentError is returned by the chunker when a document's content
// is empty or whitespace-only.
type EmptyDocumentError struct {
	Locator string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("empty document: %s has no text content", e.Locator)
}

// Is reports whether target is ErrEmptyDocument.
func (e *EmptyDocumentError) Is(target error) bool {
	return target == ErrEmptyDocument
}

// EmbeddingServiceError wraps a failed embedding call with the operation
// and the input it was serving.
type EmbeddingServiceError struct {
	// Op is the operation that needed the embedding ("ingest" or "query").
	Op string

	// Input identifies the failing input (collection name or query text).
	Input string

	Err error
}

func (e *EmbeddingServiceError) Error() string {
	return fmt.Sprintf("embedding service error during %s of %q: %v", e.Op, e.Input, e.Err)
}

func (e *EmbeddingServiceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEmbeddingService.
func (e *EmbeddingServiceError) Is(target error) bool {
	return target == ErrEmbeddingService
}

// FetchError wraps a connector failure for a locator.
type FetchError struct {
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
