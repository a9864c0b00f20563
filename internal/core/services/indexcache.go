package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/docsage/docsage/internal/adapters/driven/vector/sqlite"
	"github.com/docsage/docsage/internal/chunker"
	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/fingerprint"
	"github.com/docsage/docsage/internal/loaders"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure IndexCache implements the interface.
var _ driving.IndexAdmin = (*IndexCache)(nil)

// Index file names inside the index directory.
const (
	indexFileName       = "index.db"
	rebuildFileName     = "index.rebuild.db"
	fingerprintFileName = "fingerprint"
)

// embedBatchSize caps how many chunk texts go into one embedding request.
const embedBatchSize = 100

// IndexCacheConfig holds configuration for the index cache.
type IndexCacheConfig struct {
	// CorpusDir is the directory of source documents (required).
	CorpusDir string

	// IndexDir is where the index database and its fingerprint live
	// (required).
	IndexDir string

	// ContentHash folds file contents into the corpus fingerprint, so
	// in-place edits trigger a rebuild too. Off by default: the
	// fingerprint then covers file names only.
	ContentHash bool
}

// IndexCache keeps a vector index in sync with a corpus directory.
//
// On each access it fingerprints the corpus. When the fingerprint
// matches the one recorded for the persisted index, the existing index
// is reused without touching the embedding service. Otherwise the
// whole corpus is reloaded, re-chunked, re-embedded and written to a
// fresh database, which replaces the old one atomically.
type IndexCache struct {
	cfg      IndexCacheConfig
	registry *loaders.Registry
	splitter *chunker.Splitter
	embedder driven.EmbeddingService

	mu          sync.Mutex
	index       *sqlite.Index
	retired     *sqlite.Index
	fingerprint string
	state       domain.CacheState
}

// NewIndexCache creates a new index cache.
func NewIndexCache(
	cfg IndexCacheConfig,
	registry *loaders.Registry,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
) (*IndexCache, error) {
	if cfg.CorpusDir == "" {
		return nil, fmt.Errorf("%w: corpus directory is required", domain.ErrInvalidInput)
	}
	if cfg.IndexDir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrInvalidInput)
	}

	return &IndexCache{
		cfg:      cfg,
		registry: registry,
		splitter: splitter,
		embedder: embedder,
		state:    domain.CacheEmpty,
	}, nil
}

// GetOrRebuild returns an index that matches the current corpus,
// rebuilding it first if the corpus changed since the index was built.
// Concurrent calls are serialized; a failed rebuild leaves the previous
// index (if any) untouched and usable.
func (c *IndexCache) GetOrRebuild(ctx context.Context) (driven.VectorIndex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.computeFingerprint()
	if err != nil {
		return nil, err
	}

	// Fast path: open index already matches the corpus.
	if c.index != nil && c.fingerprint == current {
		logger.Debug("index cache hit (fingerprint %s)", fingerprint.Short(current))
		c.state = domain.CacheReady
		return c.index, nil
	}

	// A previous run may have left a matching index on disk.
	if c.index == nil && c.storedFingerprint() == current {
		idx, err := sqlite.Open(c.indexPath())
		if err == nil {
			logger.Info("reusing persisted index (fingerprint %s)", fingerprint.Short(current))
			c.index = idx
			c.fingerprint = current
			c.state = domain.CacheReady
			return c.index, nil
		}
		logger.Warn("persisted index unusable, rebuilding: %v", err)
	}

	c.state = domain.CacheRebuilding
	idx, err := c.rebuild(ctx, current)
	if err != nil {
		if c.index != nil {
			c.state = domain.CacheStale
		} else {
			c.state = domain.CacheEmpty
		}
		return nil, err
	}

	// Callers that resolved the old handle before the swap may still
	// be mid-search on it, so it must outlive the swap. It is closed
	// on the swap after this one, or on Close.
	if c.retired != nil {
		c.retired.Close()
	}
	c.retired = c.index
	c.index = idx
	c.fingerprint = current
	c.state = domain.CacheReady
	return c.index, nil
}

// Current returns the open index without checking corpus freshness.
// Only when no index exists yet (first use) does it build one. Staleness
// is handled by the watcher and the explicit rebuild operations, never
// mid-question.
func (c *IndexCache) Current(ctx context.Context) (driven.VectorIndex, error) {
	c.mu.Lock()
	if c.index != nil {
		idx := c.index
		c.mu.Unlock()
		return idx, nil
	}
	c.mu.Unlock()
	return c.GetOrRebuild(ctx)
}

// rebuild loads, chunks and embeds the whole corpus into a fresh
// database, then swaps it in. The fingerprint file is written only
// after the swap succeeds, so a crash mid-rebuild leaves either the
// old index with its old fingerprint or a new index not yet recorded,
// never a mismatched pair.
func (c *IndexCache) rebuild(ctx context.Context, fp string) (*sqlite.Index, error) {
	logger.Section("Index Rebuild")
	logger.Info("corpus changed (fingerprint %s), rebuilding index", fingerprint.Short(fp))

	docs, err := c.registry.LoadDir(ctx, c.cfg.CorpusDir)
	if err != nil {
		return nil, err
	}

	chunks := c.splitter.SplitAll(docs)
	logger.Info("split %d documents into %d chunks", len(docs), len(chunks))

	if err := c.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	rebuildPath := filepath.Join(c.cfg.IndexDir, rebuildFileName)
	if err := removeDatabase(rebuildPath); err != nil {
		return nil, fmt.Errorf("clearing stale rebuild files: %w", err)
	}

	tmp, err := sqlite.Open(rebuildPath)
	if err != nil {
		return nil, err
	}
	if err := tmp.Upsert(ctx, chunks); err != nil {
		tmp.Close()
		removeDatabase(rebuildPath)
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		removeDatabase(rebuildPath)
		return nil, fmt.Errorf("closing rebuilt index: %w", err)
	}

	if err := c.swapIn(rebuildPath); err != nil {
		removeDatabase(rebuildPath)
		return nil, err
	}

	if err := c.writeFingerprint(fp); err != nil {
		return nil, err
	}

	idx, err := sqlite.Open(c.indexPath())
	if err != nil {
		return nil, fmt.Errorf("opening rebuilt index: %w", err)
	}
	logger.Info("index rebuilt with %d chunks", len(chunks))
	return idx, nil
}

// embedChunks fills in chunk embeddings in batches.
func (c *IndexCache) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Text
		}

		embeddings, err := c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrEmbeddingFailure, len(embeddings), len(texts))
		}

		for i, embedding := range embeddings {
			chunks[start+i].Embedding = embedding
		}
		logger.Debug("embedded chunks %d-%d of %d", start, end-1, len(chunks))
	}
	return nil
}

// swapIn replaces the live database file with the rebuilt one. The
// open handle on the old file (if any) keeps working until closed.
func (c *IndexCache) swapIn(rebuildPath string) error {
	livePath := c.indexPath()
	if err := removeDatabase(livePath); err != nil {
		return fmt.Errorf("clearing old index files: %w", err)
	}
	if err := os.Rename(rebuildPath, livePath); err != nil {
		return fmt.Errorf("swapping in rebuilt index: %w", err)
	}
	return nil
}

// Invalidate forgets the recorded fingerprint, forcing the next
// GetOrRebuild to rebuild even when the corpus looks unchanged.
func (c *IndexCache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fingerprint = ""
	if c.index != nil {
		c.state = domain.CacheStale
	}

	err := os.Remove(c.fingerprintPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing fingerprint file: %w", err)
	}
	logger.Info("index invalidated")
	return nil
}

// State reports the cache lifecycle state.
func (c *IndexCache) State() domain.CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fingerprint returns the fingerprint of the corpus the current index
// was built from, or empty when no index is loaded.
func (c *IndexCache) Fingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fingerprint
}

// Close releases the open index and any retired handle.
func (c *IndexCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired != nil {
		c.retired.Close()
		c.retired = nil
	}
	if c.index == nil {
		return nil
	}
	err := c.index.Close()
	c.index = nil
	c.state = domain.CacheEmpty
	return err
}

func (c *IndexCache) indexPath() string {
	return filepath.Join(c.cfg.IndexDir, indexFileName)
}

func (c *IndexCache) fingerprintPath() string {
	return filepath.Join(c.cfg.IndexDir, fingerprintFileName)
}

func (c *IndexCache) computeFingerprint() (string, error) {
	var opts []fingerprint.Option
	if c.cfg.ContentHash {
		opts = append(opts, fingerprint.WithContentHash())
	}
	return fingerprint.Compute(c.cfg.CorpusDir, opts...)
}

// storedFingerprint reads the fingerprint recorded for the persisted
// index, or empty when none is recorded.
func (c *IndexCache) storedFingerprint() string {
	data, err := os.ReadFile(c.fingerprintPath())
	if err != nil {
		return ""
	}
	return string(data)
}

func (c *IndexCache) writeFingerprint(fp string) error {
	if err := os.MkdirAll(c.cfg.IndexDir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := os.WriteFile(c.fingerprintPath(), []byte(fp), 0600); err != nil {
		return fmt.Errorf("writing fingerprint file: %w", err)
	}
	return nil
}

// removeDatabase removes a SQLite database file along with its WAL
// sidecar files.
func removeDatabase(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
