package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/macrograph/internal/cli"
	"github.com/aretw0/macrograph/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts macrograph as an MCP Server, exposing the macro catalog and macro
execution as tools for AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		// Logs go to stderr and never corrupt JSON-RPC on stdout.
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Engine, app.Logger)

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		switch transport {
		case "stdio":
			app.Logger.Info("Starting macrograph MCP Server (Stdio)")
			if err := srv.ServeStdio(sc); err != nil && !errors.Is(err, sc.Err()) {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
		case "sse":
			app.Logger.Info("Starting macrograph MCP Server (SSE)", "addr", addr)
			if err := srv.ServeSSE(sc, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
		app.Logger.Info("MCP Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
}
