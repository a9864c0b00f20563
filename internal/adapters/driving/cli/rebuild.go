package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/fingerprint"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Force a full index rebuild",
	Long: `Discards the recorded corpus fingerprint and re-embeds every
document, even when the corpus looks unchanged.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if err := setup(); err != nil {
		return err
	}
	defer appDeps.cache.Close()

	if err := appDeps.cache.Invalidate(); err != nil {
		return err
	}

	index, err := appDeps.cache.GetOrRebuild(cmd.Context())
	if err != nil {
		return err
	}

	chunks, err := index.Count(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Index rebuilt: %d chunks (fingerprint %s)\n",
		chunks, fingerprint.Short(appDeps.cache.Fingerprint()))
	return nil
}
