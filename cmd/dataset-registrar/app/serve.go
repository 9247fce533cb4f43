package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/dataset-registrar/internal/app"
	"github.com/stacklok/dataset-registrar/internal/config"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the registrar",
		Long: `Start the registrar HTTP API and register data sets on every
server instance connection event.

The configuration file (--config) names the definitions file, the server
templates with their administrative endpoints, the retry budget and optional
webhooks and telemetry. See examples/ for a sample configuration.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().Duration("shutdown-timeout", defaultGracefulTimeout, "Time allowed for in-flight runs on shutdown")

	if err := cmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
	}

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	for _, name := range []string{"address", "config", "shutdown-timeout"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", name, err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"definitions", cfg.Definitions.File.Path,
		"server_templates", len(cfg.ServerTemplates))

	registrar, err := app.NewRegistrarApp(ctx,
		app.WithConfig(cfg),
		app.WithAddress(viper.GetString("address")),
	)
	if err != nil {
		return fmt.Errorf("failed to create registrar: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- registrar.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			_ = registrar.Stop(defaultGracefulTimeout)
			return err
		}
		return nil
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	}

	return registrar.Stop(viper.GetDuration("shutdown-timeout"))
}
