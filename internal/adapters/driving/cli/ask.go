package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the corpus",
	Long: `Asks a single question against the indexed corpus and prints
the answer. Pass --session to continue an earlier conversation; without
it each invocation starts a fresh session.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session ID to continue a conversation")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}
	defer appDeps.cache.Close()

	sessionID := askSession
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	answer, err := appDeps.chat.Answer(cmd.Context(), sessionID, args[0])
	if err != nil {
		return err
	}

	cmd.Println(answer)
	return nil
}
