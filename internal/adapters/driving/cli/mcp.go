package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// serveMCP runs the server on stdio, or on HTTP when addr is set; tests
// replace it.
var serveMCP = func(ctx context.Context, server *mcp.Server, addr string) error {
	if addr != "" {
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can page,
inspect and delete library groups.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, which works with the MCP Inspector.

Examples:
  # Stdio mode (default)
  sercha-library mcp serve

  # HTTP mode
  sercha-library mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "library": {
        "command": "/path/to/sercha-library",
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
	if err := requireLibrary(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	if startServices != nil {
		startServices(ctx)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Library:   libraryService,
		Assistant: assistantService,
	}, mcp.WithLogger(logger.Zap()))
	if err != nil {
		return err
	}

	var addr string
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
		// stdout is the JSON-RPC channel only in stdio mode.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
	}
	return serveMCP(ctx, server, addr)
}
