package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = needsServices(&cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and acts for
the user named by --token.

Use --port to start an HTTP server instead. Each client then authenticates
with an "Authorization: Bearer <token>" header, and Prometheus metrics are
served at /metrics.

Tools: ask, ingest_text, list_documents, list_history

Examples:
  # Stdio mode (default, for desktop assistants)
  docqa mcp serve

  # HTTP mode
  docqa mcp serve --port 8080`,
	RunE: runMCPServe,
})

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
		Ask:      services.Ask,
		Ingest:   services.Ingest,
		Document: services.Document,
		History:  services.History,
		Auth:     services.Auth,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		if services.Metrics != nil {
			server.SetMetricsHandler(services.Metrics)
		}
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context(), authToken)
}
