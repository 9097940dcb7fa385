package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"canopy"
	"canopy/internal/logging"
	mcpAdapter "canopy/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes attack-tree analysis as MCP tools so AI agents can load,
evaluate and probe trees during a threat-modeling conversation.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		level, _ := cmd.Flags().GetString("log-level")

		slog.SetDefault(logging.New(logging.ParseLevel(level)))

		store, closeStore, err := buildStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := mcpAdapter.NewServer(store, canopy.Version)

		switch transport {
		case "stdio":
			// Keep stdout clean for JSON-RPC.
			log.SetOutput(os.Stderr)
			slog.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			slog.Info("starting MCP server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return err
			}
			slog.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("store", "memory", "Session store backend: memory or redis")
	mcpCmd.Flags().String("redis-addr", "localhost:6379", "Redis address (with --store redis)")
	mcpCmd.Flags().String("redis-password", "", "Redis password (with --store redis)")
	mcpCmd.Flags().Int("redis-db", 0, "Redis database number (with --store redis)")
	mcpCmd.Flags().Duration("session-ttl", 0, "Session expiry, 0 keeps sessions forever (with --store redis)")
	mcpCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
}
