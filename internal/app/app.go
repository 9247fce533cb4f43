// Package app provides application lifecycle management for the registrar.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/dataset-registrar/internal/config"
)

// RegistrarApp encapsulates all components needed to run the registrar
// and provides graceful shutdown
type RegistrarApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// cancelFunc ends the context of background registration runs
	cancelFunc context.CancelFunc
}

// Start serves the HTTP API. Registration runs start as connection events arrive.
// This method blocks until the HTTP server stops or encounters an error.
func (app *RegistrarApp) Start() error {
	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout.
// The HTTP server stops accepting events first, then in-flight runs are
// cancelled and awaited, and finally telemetry is flushed.
func (app *RegistrarApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}

	if err := app.components.Scheduler.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err := app.components.Telemetry.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *RegistrarApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *RegistrarApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the assembled components
func (app *RegistrarApp) Components() *AppComponents {
	return app.components
}
