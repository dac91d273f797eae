package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow"
	"github.com/aretw0/logicflow/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the compiler as MCP tools (parse, validate, analyze, diagram,
prompt, refine, generate, chat) and the library and saved flows as resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := openBackends(ctx, settings.cfg.Store)
		if err != nil {
			return err
		}
		defer b.Close()

		lib, err := openLibrary(settings.cfg)
		if err != nil {
			return err
		}

		opts := []mcp.Option{
			mcp.WithLogger(settings.logger),
			mcp.WithFlowStore(b.flows),
			mcp.WithVersion(strings.TrimSpace(logicflow.Version)),
		}
		if lib != nil {
			opts = append(opts, mcp.WithLibrary(lib))
		}
		srv := mcp.NewServer(newCompiler(b, nil), opts...)

		switch transport {
		case "stdio":
			// Logs already go to stderr; stdout carries JSON-RPC only.
			settings.logger.Info("starting logicflow MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			return srv.ServeSSE(ctx, addr)
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("addr", ":8081", "Address for the SSE transport")
	rootCmd.AddCommand(mcpCmd)
}
