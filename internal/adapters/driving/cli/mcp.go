package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so other assistants can use
sitechat's collections.

Tools:
  retrieve_context  passages most similar to a query
  ingest            load a url or path into a collection

Resources:
  sitechat://collections         all collections
  sitechat://collections/{name}  one collection

By default the server communicates over stdio. Use --port to serve
streamable HTTP instead.

Examples:
  # Stdio mode (default)
  sitechat mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  sitechat mcp serve --port 8080`,
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

	if err := ensureServices(cmd); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval:  retrievalService,
		Ingest:     ingestService,
		Collection: collectionName(),
		K:          defaultK(),
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(commandContext(cmd), addr)
	}

	return server.Run(commandContext(cmd))
}
