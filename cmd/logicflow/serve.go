package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow"
	httpAdapter "github.com/aretw0/logicflow/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the compiler over HTTP: parse, validate, analyze, diagram and prompt
endpoints, assistant refinement and chat sessions, saved flows and the
library. The OpenAPI document is at /openapi.yaml, a browser UI at /swagger
and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := settings.cfg
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := openBackends(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer b.Close()

		lib, err := openLibrary(cfg)
		if err != nil {
			return err
		}

		metrics := newMetrics()
		c := newCompiler(b, metrics)

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(settings.logger),
			httpAdapter.WithFlowStore(b.flows),
			httpAdapter.WithSessionStore(c.Sessions()),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithRequestValidation(cfg.Server.ValidateRequests),
			httpAdapter.WithCORS(cfg.Server.CORS),
			httpAdapter.WithVersion(strings.TrimSpace(logicflow.Version)),
		}
		if lib != nil {
			opts = append(opts, httpAdapter.WithLibrary(lib))
		}
		handler, err := httpAdapter.NewHandler(c, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			settings.logger.Info("logicflow server listening",
				"address", srv.Addr,
				"store", cfg.Store.Backend,
				"library", lib != nil)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			settings.logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				settings.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			settings.logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
