package driven

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// VectorIndex stores embedded chunks and answers nearest-neighbour queries.
// The index is owned exclusively by the index cache; everything else sees
// it as this capability.
type VectorIndex interface {
	// Upsert inserts or replaces chunks together with their embeddings.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Search finds the k chunks most similar to the query vector,
	// ordered most-similar first.
	Search(ctx context.Context, query []float32, k int) ([]domain.Chunk, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
