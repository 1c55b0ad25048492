package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leafline-site/internal/config"
	"leafline-site/internal/observability/logging"
	"leafline-site/internal/observability/tracing"
)

func main() {
	logger := initLogger()

	cfg, err := config.LoadSiteConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	version := getVersion()
	shutdownTracing := tracing.Install(version)

	components, err := setupServer(logger, cfg, version)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(logger, cfg, components, version)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracer shutdown failed", slog.Any("error", err))
	}
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// runServer starts the HTTP server and the cache warmer, then blocks until
// SIGINT or SIGTERM and shuts both down.
func runServer(logger *slog.Logger, cfg *config.SiteConfig, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.Warmer != nil {
		components.Warmer.Start()
		logger.Info("posts cache warmer started",
			slog.String("schedule", cfg.Feed.WarmSchedule),
			slog.String("timezone", cfg.Feed.WarmLocation().String()))
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       15 * time.Second,
		// Long enough for one feed fetch or one provider call plus encoding.
		WriteTimeout: max(cfg.Feed.Timeout, cfg.Mail.Timeout) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTP.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	if components.Warmer != nil {
		// Stop waits for a running warm to finish.
		<-components.Warmer.Stop().Done()
		logger.Debug("posts cache warmer stopped")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
