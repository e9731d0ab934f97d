// Package domain defines the core entities for sitechat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes from a connector
//   - Document: Normalised text of one fetch
//   - Chunk: A bounded window of document text
//   - Collection: A named, persistent set of embedded chunks
//   - RetrievalResult: Scored chunks returned by similarity search
//   - Conversation: Caller-owned chat history for the agent
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
