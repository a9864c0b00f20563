package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/adapters/driving/httpapi"
	"github.com/docsage/docsage/internal/logger"
	"github.com/docsage/docsage/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the Docsage HTTP API.

Endpoints:
  POST   /chat              ask a question within a session
  POST   /documents         upload a document into the corpus
  DELETE /documents/{name}  remove a document from the corpus
  POST   /admin/rebuild     force a full index rebuild
  GET    /status            index state and supported formats
  GET    /health            liveness probe

When the watcher is enabled, changes to the corpus directory rebuild
the index automatically.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := setup(); err != nil {
		return err
	}
	defer appDeps.cache.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Surface bad credentials or an unreachable API before serving
	// traffic. Neither is fatal: the API may come back.
	if appDeps.embedPing != nil {
		if err := appDeps.embedPing.Ping(ctx); err != nil {
			logger.Warn("embedding API check failed: %v", err)
		}
	}
	if appDeps.llmPing != nil {
		if err := appDeps.llmPing.Ping(ctx); err != nil {
			logger.Warn("chat API check failed: %v", err)
		}
	}

	if appDeps.cfg.Watcher.Enabled {
		w, err := watcher.New(appDeps.cfg.Corpus.Dir, appDeps.cfg.WatcherDebounce(), appDeps.cache)
		if err != nil {
			logger.Warn("watcher disabled: %v", err)
		} else {
			go w.Start(ctx)
			defer w.Stop()
		}
	}

	api := httpapi.NewServer(appDeps.chat, appDeps.cache, appDeps.registry, appDeps.cfg.Corpus.Dir)
	srv := &http.Server{
		Addr:              appDeps.cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cmd.Printf("docsage listening on %s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
