package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/fingerprint"
)

// pingTimeout bounds the reachability checks in status output.
const pingTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus and index status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := setup(); err != nil {
		return err
	}
	defer appDeps.cache.Close()

	cmd.Printf("Corpus:      %s\n", appDeps.cfg.Corpus.Dir)
	cmd.Printf("Index:       %s\n", appDeps.cfg.Index.Dir)
	cmd.Printf("State:       %s\n", appDeps.cache.State())
	if fp := appDeps.cache.Fingerprint(); fp != "" {
		cmd.Printf("Fingerprint: %s\n", fingerprint.Short(fp))
	}
	cmd.Printf("Formats:     %s\n", strings.Join(appDeps.registry.Extensions(), ", "))
	cmd.Printf("Embeddings:  %s\n", reachability(cmd.Context(), appDeps.embedPing))
	cmd.Printf("Chat model:  %s\n", reachability(cmd.Context(), appDeps.llmPing))
	return nil
}

func reachability(ctx context.Context, p pinger) string {
	if p == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "unreachable (" + err.Error() + ")"
	}
	return "reachable"
}
