package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prescribewise/prescribewise-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  prescribewise mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  prescribewise mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "prescribewise": {
        "command": "/path/to/prescribewise",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Ask:       askService,
		Retrieval: retrievalService,
		Ingest:    ingestService,
		Document:  settings.Document,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	// Serve from a warm index and rebuild when the file changes.
	if ingestService != nil {
		if err := ingestService.Build(cmd.Context()); err != nil {
			return fmt.Errorf("index build failed: %w", err)
		}
	}
	stopWatching := startDocumentWatcher(cmd.Context())
	defer stopWatching()

	var addr string
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
