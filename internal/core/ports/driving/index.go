package driving

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
)

// IndexAdmin manages the persisted vector index over the corpus.
type IndexAdmin interface {
	// GetOrRebuild returns the current index, rebuilding it first if the
	// corpus fingerprint no longer matches the persisted metadata.
	GetOrRebuild(ctx context.Context) (driven.VectorIndex, error)

	// Current returns the open index without checking whether the
	// corpus changed, building one only when none exists yet. Question
	// answering uses this; freshness is driven by the watcher and the
	// explicit rebuild operations.
	Current(ctx context.Context) (driven.VectorIndex, error)

	// Invalidate forces the next GetOrRebuild to re-embed the corpus,
	// regardless of the fingerprint.
	Invalidate() error

	// State reports where the cache is in its lifecycle.
	State() domain.CacheState

	// Fingerprint returns the fingerprint the persisted index was built
	// from, or the empty string if none exists.
	Fingerprint() string
}
