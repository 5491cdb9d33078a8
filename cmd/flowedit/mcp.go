package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/recoverly/flowedit/internal/cli"
	"github.com/recoverly/flowedit/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes editor sessions as MCP tools so AI agents can open automations,
apply edits, undo, redo and save.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		rt, err := newRuntime(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := mcp.NewServer(rt.Engine.Sessions(), rt.Engine.Templates(), rt.Logger)

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			rt.Logger.Info("starting flowedit MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			err := srv.ServeSSE(sigCtx, addr, baseURL)
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			rt.Logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8090", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced to SSE clients")
}
