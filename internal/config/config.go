// Package config loads Docsage configuration from a TOML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Default locations and values.
const (
	DefaultCorpusDir  = "./data/files"
	DefaultListenAddr = ":8080"
)

// Config is the full application configuration.
type Config struct {
	Corpus  CorpusConfig  `toml:"corpus"`
	Index   IndexConfig   `toml:"index"`
	OpenAI  OpenAIConfig  `toml:"openai"`
	Chat    ChatConfig    `toml:"chat"`
	Server  ServerConfig  `toml:"server"`
	Watcher WatcherConfig `toml:"watcher"`
}

// CorpusConfig describes the document corpus.
type CorpusConfig struct {
	// Dir is the directory holding the source documents.
	Dir string `toml:"dir"`

	// ContentHash makes in-place file edits invalidate the index,
	// at the cost of reading every file on each change check.
	ContentHash bool `toml:"content_hash"`
}

// IndexConfig describes the persisted vector index.
type IndexConfig struct {
	// Dir is where the index database lives.
	Dir string `toml:"dir"`

	// ChunkSize is the chunk window in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int `toml:"chunk_overlap"`
}

// OpenAIConfig describes the OpenAI-compatible API endpoints.
type OpenAIConfig struct {
	// APIKey is read from OPENAI_API_KEY when empty.
	APIKey string `toml:"api_key"`

	// BaseURL can point at Azure OpenAI or any compatible API.
	BaseURL string `toml:"base_url"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// ChatModel is the chat completion model name.
	ChatModel string `toml:"chat_model"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// ChatConfig tunes the retrieval pipeline.
type ChatConfig struct {
	// TopK is how many chunks are retrieved per question.
	TopK int `toml:"top_k"`

	// MaxAnswerTokens caps the reply length (0 = no cap).
	MaxAnswerTokens int `toml:"max_answer_tokens"`
}

// ServerConfig describes the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
}

// WatcherConfig describes the corpus file watcher.
type WatcherConfig struct {
	// Enabled turns on automatic rebuilds on corpus changes.
	Enabled bool `toml:"enabled"`

	// DebounceMillis is how long to wait after the last filesystem
	// event before rebuilding.
	DebounceMillis int `toml:"debounce_millis"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Corpus: CorpusConfig{
			Dir: DefaultCorpusDir,
		},
		Index: IndexConfig{
			Dir: filepath.Join(os.TempDir(), "docsage-index"),
		},
		Chat:   ChatConfig{TopK: 3},
		Server: ServerConfig{Addr: DefaultListenAddr},
		Watcher: WatcherConfig{
			Enabled:        true,
			DebounceMillis: 500,
		},
	}
}

// Load reads configuration from path, falling back to defaults when
// path is empty or the file does not exist. A .env file in the working
// directory is loaded first so OPENAI_API_KEY can live there.
func Load(path string) (Config, error) {
	// Missing .env is fine; explicit config errors are not.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Chat.TopK <= 0 {
		cfg.Chat.TopK = 3
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultListenAddr
	}
	if cfg.Watcher.DebounceMillis <= 0 {
		cfg.Watcher.DebounceMillis = 500
	}

	return cfg, nil
}

// OpenAITimeout returns the configured request timeout, or zero to let
// the adapter defaults apply.
func (c Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

// WatcherDebounce returns the debounce window as a duration.
func (c Config) WatcherDebounce() time.Duration {
	return time.Duration(c.Watcher.DebounceMillis) * time.Millisecond
}
