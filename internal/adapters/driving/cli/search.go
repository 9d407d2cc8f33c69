package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve guideline passages for a query",
	Long: `Performs semantic similarity search over the indexed guideline and
prints the matched passages with their page attribution and scores.

This is a retrieval diagnostic: no relevance floor is applied and no
answer is generated, so it shows exactly what 'ask' would ground on.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of passages")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured (set a document and an embedding provider via 'prescribewise config')")
	}

	if err := ensureIndex(cmd); err != nil {
		return err
	}

	results, err := retrievalService.Retrieve(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	type resultOut struct {
		ChunkID int     `json:"chunk_id"`
		Pages   string  `json:"pages"`
		Score   float64 `json:"score"`
		Text    string  `json:"text"`
	}

	out := make([]resultOut, len(results))
	for i := range results {
		out[i] = resultOut{
			ChunkID: results[i].Chunk.ID,
			Pages:   results[i].Chunk.PageLabel(),
			Score:   results[i].Score,
			Text:    results[i].Chunk.Text,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	cmd.Println("Passages:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] pages %s (%.2f)\n", i+1, results[i].Chunk.PageLabel(), results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Text, 160))
		cmd.Println()
	}

	return nil
}

// snippet flattens and truncates chunk text for single-line display.
func snippet(text string, max int) string {
	flat := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		flat = append(flat, r)
	}
	if len(flat) > max {
		return string(flat[:max]) + "..."
	}
	return string(flat)
}
