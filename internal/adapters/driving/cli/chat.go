package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-and-answer session",
	Long: `Starts an interactive session against the guideline. Each question is
answered independently with its own retrieval pass; a failed turn does not
end the session. Type 'exit' or 'quit' (or press Ctrl-D) to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured (set a document and an embedding provider via 'prescribewise config')")
	}

	if err := ensureIndex(cmd); err != nil {
		return err
	}

	stopWatching := startDocumentWatcher(cmd.Context())
	defer stopWatching()

	cmd.Printf("Asking %s. Type 'exit' to leave.\n\n", settings.Document.Title)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch {
		case question == "":
			continue
		case question == "exit" || question == "quit":
			return nil
		}

		// Rebuild transparently if the document changed mid-session.
		if err := ensureIndex(cmd); err != nil {
			cmd.Printf("Error: %v\n\n", err)
			continue
		}

		answer, err := askService.Ask(cmd.Context(), question)
		if err != nil {
			// Turn-scoped: report and keep the session alive.
			cmd.Printf("Error: %v\n\n", err)
			continue
		}

		outputAnswer(cmd, answer)
		cmd.Println()
	}
}
