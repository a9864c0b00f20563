// Package cli implements the docsage command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	openaiembedding "github.com/docsage/docsage/internal/adapters/driven/embedding/openai"
	openaillm "github.com/docsage/docsage/internal/adapters/driven/llm/openai"
	"github.com/docsage/docsage/internal/adapters/driven/storage/memory"
	"github.com/docsage/docsage/internal/chunker"
	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/core/services"
	"github.com/docsage/docsage/internal/loaders"
	"github.com/docsage/docsage/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile     string
	verboseFlag bool
)

// pinger checks that a backing API is reachable with the configured
// credentials.
type pinger interface {
	Ping(ctx context.Context) error
}

// deps holds the wired application services for the running command.
type deps struct {
	cfg       config.Config
	registry  *loaders.Registry
	cache     *services.IndexCache
	chat      driving.ChatService
	embedPing pinger
	llmPing   pinger
}

// appDeps is populated by setup before a command runs.
var appDeps *deps

// buildDeps wires the application; tests may replace it.
var buildDeps = defaultBuildDeps

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Chat with your documents",
	Long: `Docsage answers questions over a directory of documents.

It chunks and embeds the corpus into a local vector index, keeps the
index in sync with the directory contents, and answers questions with
retrieval-augmented chat. Supported formats: plain text, Markdown, PDF.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "docsage.toml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and wires services. Commands that need the
// pipeline call it in their RunE.
func setup() error {
	if appDeps != nil {
		return nil
	}
	d, err := buildDeps()
	if err != nil {
		return err
	}
	appDeps = d
	return nil
}

func defaultBuildDeps() (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	embedder, err := openaiembedding.NewEmbeddingService(openaiembedding.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.EmbeddingModel,
		Timeout: cfg.OpenAITimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring embedding service: %w", err)
	}

	llm, err := openaillm.NewLLMService(openaillm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Timeout: cfg.OpenAITimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring LLM service: %w", err)
	}

	registry := loaders.DefaultRegistry()

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Index.ChunkSize),
		chunker.WithOverlap(cfg.Index.ChunkOverlap),
	)

	cache, err := services.NewIndexCache(services.IndexCacheConfig{
		CorpusDir:   cfg.Corpus.Dir,
		IndexDir:    cfg.Index.Dir,
		ContentHash: cfg.Corpus.ContentHash,
	}, registry, splitter, embedder)
	if err != nil {
		return nil, err
	}

	chat := services.NewChatService(services.ChatServiceConfig{
		TopK:            cfg.Chat.TopK,
		MaxAnswerTokens: cfg.Chat.MaxAnswerTokens,
	}, cache, embedder, llm, memory.NewConversationStore())

	return &deps{
		cfg:       cfg,
		registry:  registry,
		cache:     cache,
		chat:      chat,
		embedPing: embedder,
		llmPing:   llm,
	}, nil
}
