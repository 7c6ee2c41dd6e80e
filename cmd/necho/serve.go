package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/api"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/config"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/factory"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve [port]",
	Short: "Run the N-Echo server",
	Long:  "Start the N-Echo TCP server. The optional port argument overrides NECHO_PORT.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration from environment
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := cfg.ApplyPortArg(args[0]); err != nil {
			return err
		}
	}

	logger.Init(logger.Options{Debug: cfg.Debug, JSON: cfg.LogFormat == "json"})
	logger.Info("Starting necho...",
		"host", cfg.Host,
		"port", cfg.Port,
		"backlog", cfg.Backlog,
		"listener_mode", cfg.ListenerMode)

	server, err := factory.NewServerFactory(cfg).Create()
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx)
	})

	var healthServer *api.HealthServer
	if cfg.HealthServerEnabled {
		healthServer = api.NewHealthServer(":"+cfg.HealthServerPort, server)
		g.Go(healthServer.Serve)
	}

	// Interrupt, or any member failing, stops everything.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down necho...")
		server.Stop()
		if healthServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthServer.Stop(shutdownCtx); err != nil {
				logger.Warn("Health server shutdown error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("necho stopped", "port", cfg.Port)
	return nil
}
