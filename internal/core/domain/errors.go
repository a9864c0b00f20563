package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrDirectoryNotFound indicates the corpus directory does not exist.
	// Fatal to the calling operation.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no loader can handle.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmptyIndex indicates the vector index holds no chunks.
	// Surfaced to the user as a graceful "nothing to search" answer,
	// never as a crash.
	ErrEmptyIndex = errors.New("no documents indexed")

	// ErrEmbeddingFailure indicates the embedding service failed.
	// The persisted index and metadata are left exactly as before the call.
	ErrEmbeddingFailure = errors.New("embedding failed")

	// ErrGenerationFailure indicates the language model call failed.
	// The session transcript is left exactly as before the call.
	ErrGenerationFailure = errors.New("generation failed")
)
