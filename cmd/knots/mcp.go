package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/knots/internal/cli"
	"github.com/aretw0/knots/internal/logging"
	"github.com/aretw0/knots/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp <story>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the story as MCP tools and resources so an agent can play sessions
and inspect the analysis.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level == "" {
			// Stdout carries JSON-RPC; logs always go to stderr.
			logger = logging.New(slog.LevelInfo)
		}

		eng, closeFn, err := cli.CreateEngine(engineOptions(cmd, args[0]), logger)
		if err != nil {
			return err
		}
		defer closeFn()

		srv := mcp.NewServer(eng, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting knots MCP server (stdio)", "story", args[0])
			return srv.ServeStdio()
		case "sse":
			addr := fmt.Sprintf(":%d", port)
			logger.Info("Starting knots MCP server (SSE)", "addr", addr, "story", args[0])

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			err := srv.ServeSSE(sigCtx, addr, fmt.Sprintf("http://localhost:%d", port))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully", "reason", cli.StopReason(sigCtx.Signal()))
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
