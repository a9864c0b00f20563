package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultCorpusDir, cfg.Corpus.Dir)
	assert.Equal(t, DefaultListenAddr, cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Chat.TopK)
	assert.True(t, cfg.Watcher.Enabled)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCorpusDir, cfg.Corpus.Dir)
}

func TestLoad_ParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsage.toml")
	content := `
[corpus]
dir = "/srv/docs"
content_hash = true

[index]
dir = "/srv/index"
chunk_size = 800
chunk_overlap = 80

[openai]
embedding_model = "text-embedding-3-large"
chat_model = "gpt-4o"
timeout_seconds = 30

[chat]
top_k = 5

[server]
addr = ":9000"

[watcher]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs", cfg.Corpus.Dir)
	assert.True(t, cfg.Corpus.ContentHash)
	assert.Equal(t, "/srv/index", cfg.Index.Dir)
	assert.Equal(t, 800, cfg.Index.ChunkSize)
	assert.Equal(t, 80, cfg.Index.ChunkOverlap)
	assert.Equal(t, "text-embedding-3-large", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, 5, cfg.Chat.TopK)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.False(t, cfg.Watcher.Enabled)
	assert.Equal(t, int64(30), int64(cfg.OpenAITimeout().Seconds()))
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("corpus = {"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", cfg.OpenAI.APIKey)
}

func TestLoad_FileAPIKeyWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := filepath.Join(t.TempDir(), "docsage.toml")
	require.NoError(t, os.WriteFile(path, []byte("[openai]\napi_key = \"sk-file\"\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.OpenAI.APIKey)
}
