package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the guideline",
	Long: `Answers a clinical question strictly from the configured guideline
document, citing the pages each answer is grounded on. When nothing in
the guideline scores above the relevance floor, the question is declined
instead of answered from general knowledge.

The retrieval index is built on first use and reused afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if askService == nil {
		return errors.New("ask service not configured (set a document and an embedding provider via 'prescribewise config')")
	}

	ctx := cmd.Context()

	if err := ensureIndex(cmd); err != nil {
		return err
	}

	answer, err := askService.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	outputAnswer(cmd, answer)
	return nil
}

// ensureIndex builds the retrieval index if it is not ready yet. Builds are
// memoized by document fingerprint, so this is a no-op on repeat calls.
func ensureIndex(cmd *cobra.Command) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestService.Status().Ready {
		return nil
	}

	cmd.Printf("Indexing %s ...\n", settings.Document.Title)
	if err := ingestService.Build(cmd.Context()); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	status := ingestService.Status()
	cmd.Printf("Indexed %d pages into %d chunks in %s.\n\n",
		status.Pages, status.TotalChunks, status.Elapsed.Round(10*time.Millisecond))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer domain.Answer) {
	if !answer.Grounded {
		cmd.Println("The guideline does not cover this question.")
		if answer.Reason != "" {
			cmd.Printf("  (%s)\n", answer.Reason)
		}
		return
	}

	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			cmd.Printf("  [%d] pages %s (%.2f)\n", src.Index, src.PageLabel(), src.Score)
		}
	}
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	type sourceOut struct {
		Index int     `json:"index"`
		Pages string  `json:"pages"`
		Score float64 `json:"score"`
	}
	type answerOut struct {
		Grounded bool        `json:"grounded"`
		Answer   string      `json:"answer,omitempty"`
		Reason   string      `json:"reason,omitempty"`
		Sources  []sourceOut `json:"sources,omitempty"`
	}

	out := answerOut{
		Grounded: answer.Grounded,
		Answer:   answer.Text,
		Reason:   answer.Reason,
	}
	for _, src := range answer.Sources {
		out.Sources = append(out.Sources, sourceOut{
			Index: src.Index,
			Pages: src.PageLabel(),
			Score: src.Score,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
