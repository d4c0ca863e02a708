package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opencowork/opencowork/internal/config"
	"github.com/opencowork/opencowork/internal/gateway"
	"github.com/opencowork/opencowork/internal/observability"
	"github.com/opencowork/opencowork/internal/provider"
	"github.com/opencowork/opencowork/internal/session"
	"github.com/opencowork/opencowork/internal/tools"
)

// buildServeCmd creates the "serve" command that starts the gateway's
// WebSocket control plane.
func buildServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the opencowork gateway server",
		Long: `Start the opencowork gateway server.

The server will:
1. Load configuration from the specified file (if present).
2. Build the session registry, tool registry, and provider adapters.
3. Serve the WebSocket control plane at /ws and a liveness probe at /healthz.

Graceful shutdown is handled on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "opencowork.yaml", "Path to YAML configuration file")
	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := observability.NewLogger(observability.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	sessions := session.NewRegistry()
	toolRegistry := tools.NewRegistry()
	providers := map[string]provider.Adapter{
		"anthropic": provider.Anthropic{},
		"openai":    provider.OpenAI{},
	}

	srv := gateway.NewServer(sessions, toolRegistry, providers, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: srv.Routes()}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
