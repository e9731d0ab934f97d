// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - Fetcher: Retrieves raw bytes for a locator (web, filesystem)
//   - Normaliser: Turns raw bytes into document text by MIME type
//   - Splitter: Splits document text into chunks
//   - EmbeddingService: Generates vector embeddings
//   - CollectionStore: Durable collections with similarity search
//   - ChatModel: Streaming chat completions with tool calls
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
