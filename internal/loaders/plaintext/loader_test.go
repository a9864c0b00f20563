package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("  hello world\n"), 0600))

	doc, err := New().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "hello world", doc.Text)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestExtensions(t *testing.T) {
	assert.Contains(t, New().Extensions(), ".txt")
}
