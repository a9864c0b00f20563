package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/chunker"
	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/loaders"
)

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func newTestCache(t *testing.T, corpusDir, indexDir string, embedder *fakeEmbedder) *IndexCache {
	t.Helper()
	cache, err := NewIndexCache(
		IndexCacheConfig{CorpusDir: corpusDir, IndexDir: indexDir},
		loaders.DefaultRegistry(),
		chunker.New(chunker.WithChunkSize(50), chunker.WithOverlap(5)),
		embedder,
	)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestGetOrRebuild_BuildsOnFirstAccess(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")
	writeCorpusFile(t, corpus, "b.txt", "beta document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)
	assert.Equal(t, domain.CacheEmpty, cache.State())

	ctx := context.Background()
	idx, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.CacheReady, cache.State())
	assert.NotEmpty(t, cache.Fingerprint())
	assert.Positive(t, embedder.batchCalls())
}

func TestGetOrRebuild_UnchangedCorpusSkipsEmbedding(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	first, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)
	callsAfterBuild := embedder.batchCalls()

	second, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, callsAfterBuild, embedder.batchCalls())
}

func TestGetOrRebuild_AddedFileTriggersRebuild(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	_, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)
	fpBefore := cache.Fingerprint()
	callsBefore := embedder.batchCalls()

	writeCorpusFile(t, corpus, "b.txt", "beta document")
	idx, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	assert.Greater(t, embedder.batchCalls(), callsBefore)
	assert.NotEqual(t, fpBefore, cache.Fingerprint())

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetOrRebuild_RemovedFileTriggersRebuild(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")
	writeCorpusFile(t, corpus, "b.txt", "beta document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	_, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(corpus, "b.txt")))
	idx, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetOrRebuild_OldHandleSurvivesSwap(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	old, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	// A rebuild swaps a new index in while a reader still holds the
	// old handle, as happens when a question is mid-pipeline.
	writeCorpusFile(t, corpus, "b.txt", "beta document")
	fresh, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)
	require.NotSame(t, old, fresh)

	results, err := old.Search(ctx, textVector("alpha document"), 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	n, err := fresh.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCurrent_DoesNotRebuildOnCorpusChange(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	built, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)
	callsAfterBuild := embedder.batchCalls()

	// The corpus changes, but Current keeps serving the open index.
	writeCorpusFile(t, corpus, "b.txt", "beta document")
	current, err := cache.Current(ctx)
	require.NoError(t, err)

	assert.Same(t, built, current)
	assert.Equal(t, callsAfterBuild, embedder.batchCalls())
}

func TestCurrent_BuildsWhenNoIndexExists(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	idx, err := cache.Current(context.Background())
	require.NoError(t, err)

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.CacheReady, cache.State())
}

func TestGetOrRebuild_ReusesPersistedIndexAcrossInstances(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	ctx := context.Background()
	first := newTestCache(t, corpus, indexDir, &fakeEmbedder{})
	_, err := first.GetOrRebuild(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// A fresh process over the same directories reuses the persisted
	// index without embedding anything.
	embedder := &fakeEmbedder{}
	second := newTestCache(t, corpus, indexDir, embedder)
	idx, err := second.GetOrRebuild(ctx)
	require.NoError(t, err)

	assert.Zero(t, embedder.batchCalls())
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetOrRebuild_EmbedFailureKeepsOldIndex(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	old, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)

	writeCorpusFile(t, corpus, "b.txt", "beta document")
	embedder.failWith = errors.New("quota exceeded")

	_, err = cache.GetOrRebuild(ctx)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingFailure))
	assert.Equal(t, domain.CacheStale, cache.State())

	// The previous index is still open and queryable.
	n, err := old.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvalidate_ForcesRebuild(t *testing.T) {
	corpus, indexDir := t.TempDir(), t.TempDir()
	writeCorpusFile(t, corpus, "a.txt", "alpha document")

	embedder := &fakeEmbedder{}
	cache := newTestCache(t, corpus, indexDir, embedder)

	ctx := context.Background()
	_, err := cache.GetOrRebuild(ctx)
	require.NoError(t, err)
	callsBefore := embedder.batchCalls()

	require.NoError(t, cache.Invalidate())
	assert.Equal(t, domain.CacheStale, cache.State())

	_, err = cache.GetOrRebuild(ctx)
	require.NoError(t, err)
	assert.Greater(t, embedder.batchCalls(), callsBefore)
	assert.Equal(t, domain.CacheReady, cache.State())
}

func TestGetOrRebuild_MissingCorpusDirectory(t *testing.T) {
	cache := newTestCache(t, filepath.Join(t.TempDir(), "nope"), t.TempDir(), &fakeEmbedder{})

	_, err := cache.GetOrRebuild(context.Background())
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))
	assert.Equal(t, domain.CacheEmpty, cache.State())
}

func TestNewIndexCache_RequiresDirectories(t *testing.T) {
	_, err := NewIndexCache(IndexCacheConfig{}, loaders.DefaultRegistry(), chunker.New(), &fakeEmbedder{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = NewIndexCache(IndexCacheConfig{CorpusDir: "x"}, loaders.DefaultRegistry(), chunker.New(), &fakeEmbedder{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
