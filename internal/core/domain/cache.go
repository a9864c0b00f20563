package domain

// CacheState describes where the persisted vector index is in its
// lifecycle.
type CacheState int

const (
	// CacheEmpty means no index has been built or loaded yet.
	CacheEmpty CacheState = iota

	// CacheRebuilding means a rebuild is in progress.
	CacheRebuilding

	// CacheReady means the index matches the current corpus fingerprint.
	CacheReady

	// CacheStale means the index exists but no longer matches the
	// corpus, or was explicitly invalidated.
	CacheStale
)

// String returns a human-readable state name.
func (s CacheState) String() string {
	switch s {
	case CacheEmpty:
		return "empty"
	case CacheRebuilding:
		return "rebuilding"
	case CacheReady:
		return "ready"
	case CacheStale:
		return "stale"
	default:
		return "unknown"
	}
}
