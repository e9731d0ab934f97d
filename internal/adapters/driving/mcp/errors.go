// Package mcp provides an MCP (Model Context Protocol) server adapter for sitechat.
// It lets AI assistants retrieve context from ingested collections and
// ingest new sources.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
