package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the retrieval index",
	Long: `Commands for the retrieval index built from the guideline document.

The index is built automatically on first use; these commands exist to
build it ahead of time, force a rebuild after the document changed, and
inspect its state.`,
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the retrieval index",
	Long: `Extracts, chunks and embeds the guideline document. Builds are memoized
by document fingerprint: re-running against an unchanged document is a
cheap no-op. A persisted snapshot, when present and matching, is restored
instead of re-embedding.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Force a full index rebuild",
	Args:  cobra.NoArgs,
	RunE:  runIndexRebuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index build status",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured (set a document and an embedding provider via 'prescribewise config')")
	}

	if err := ingestService.Build(cmd.Context()); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	return runIndexStatus(cmd, nil)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured (set a document and an embedding provider via 'prescribewise config')")
	}

	ingestService.Invalidate()
	return runIndexBuild(cmd, nil)
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured (set a document and an embedding provider via 'prescribewise config')")
	}

	status := ingestService.Status()

	cmd.Println("Index Status")
	cmd.Println("============")
	cmd.Printf("  Document: %s\n", settings.Document.Title)
	cmd.Printf("  Path: %s\n", settings.Document.Path)

	switch {
	case status.Running:
		cmd.Printf("  State: building (%d/%d chunks embedded)\n", status.EmbeddedChunks, status.TotalChunks)
	case status.Ready:
		cmd.Printf("  State: ready\n")
	default:
		cmd.Printf("  State: not built\n")
	}

	if status.Pages > 0 {
		cmd.Printf("  Pages: %d\n", status.Pages)
	}
	if status.TotalChunks > 0 {
		cmd.Printf("  Chunks: %d\n", status.TotalChunks)
	}
	if !status.StartedAt.IsZero() {
		cmd.Printf("  Last build: %s (%s)\n",
			status.StartedAt.Format(time.RFC3339), status.Elapsed.Round(10*time.Millisecond))
	}

	return nil
}
