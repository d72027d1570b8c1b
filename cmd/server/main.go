package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/blockfall/internal/api"
	"github.com/mcoot/blockfall/internal/config"
	"github.com/mcoot/blockfall/internal/factory"
)

// maintenanceInterval is how often idle event hubs and expired token
// verifications are cleaned up
const maintenanceInterval = time.Minute

func main() {
	var configPath, staticDir string

	cmd := &cobra.Command{
		Use:   "blockfall-server",
		Short: "Run the blockfall game server",
		Long: `Run the blockfall JSON API and spectator site.

Settings come from the optional YAML config file with BLOCKFALL_* environment
variables applied on top.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, staticDir)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", os.Getenv("BLOCKFALL_CONFIG"), "Path to a YAML config file (env: BLOCKFALL_CONFIG)")
	cmd.Flags().StringVar(&staticDir, "static", "", "Serve static files from this directory instead of the built-in ones")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, staticDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.Maintain(ctx, maintenanceInterval)

	server := api.NewServer(app.Handler(staticDir), cfg.Server, logger)
	serveErr := server.ListenAndServe(ctx)
	if serveErr != nil {
		logger.Error("server error", slog.String("error", serveErr.Error()))
	} else {
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		if serveErr == nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("server stopped")
	return serveErr
}
