package fingerprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestCompute_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")
	writeFile(t, dir, "notes.txt", "beta")

	first, err := Compute(dir)
	require.NoError(t, err)
	second, err := Compute(dir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex SHA-256
}

func TestCompute_MissingDirectory(t *testing.T) {
	_, err := Compute(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))
}

func TestCompute_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "x")

	_, err := Compute(filepath.Join(dir, "file.txt"))
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))
}

func TestCompute_AddFileChangesDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")

	before, err := Compute(dir)
	require.NoError(t, err)

	writeFile(t, dir, "other.pdf", "beta")
	after, err := Compute(dir)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCompute_RemoveFileChangesDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")
	writeFile(t, dir, "other.pdf", "beta")

	before, err := Compute(dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "other.pdf")))
	after, err := Compute(dir)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCompute_ReplaceFileChangesDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")

	before, err := Compute(dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "paper.pdf")))
	writeFile(t, dir, "other.pdf", "beta")

	after, err := Compute(dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestCompute_NameOnlyIgnoresContentEdits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")

	before, err := Compute(dir)
	require.NoError(t, err)

	writeFile(t, dir, "paper.pdf", "completely different")
	after, err := Compute(dir)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestCompute_ContentHashDetectsEdits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")

	before, err := Compute(dir, WithContentHash())
	require.NoError(t, err)

	writeFile(t, dir, "paper.pdf", "completely different")
	after, err := Compute(dir, WithContentHash())
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCompute_IgnoresSubdirectoriesByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.pdf", "alpha")

	before, err := Compute(dir)
	require.NoError(t, err)

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0700))
	writeFile(t, sub, "deep.txt", "gamma")

	after, err := Compute(dir)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	recursive, err := Compute(dir, WithRecursive())
	require.NoError(t, err)
	assert.NotEqual(t, before, recursive)
}

func TestCompute_EmptyDirectory(t *testing.T) {
	a, err := Compute(t.TempDir())
	require.NoError(t, err)
	b, err := Compute(t.TempDir())
	require.NoError(t, err)

	// Two empty directories have the same (empty) file set.
	assert.Equal(t, a, b)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abcdef", Short("abcdef"))
	assert.Equal(t, "0123456789ab", Short("0123456789abcdef"))
}
