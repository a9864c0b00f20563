// Package domain defines the core business entities for Docsage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Raw text loaded from a corpus file
//   - Chunk: An embedded, searchable slice of a document
//   - Turn / Transcript: Conversation history for one session
//   - CacheState: Lifecycle of the persisted vector index
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
