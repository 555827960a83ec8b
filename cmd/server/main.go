package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/sentichat/config"
	"github.com/spacesedan/sentichat/internal/app"
	"github.com/spacesedan/sentichat/internal/httpserver"
	"github.com/spacesedan/sentichat/internal/logging"
	"github.com/spacesedan/sentichat/internal/monitoring"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("[Main] Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	var healthChecks []httpserver.HealthCheck
	if a.Scorer != nil {
		scorerHealthy := &atomic.Bool{}
		scorerHealthy.Store(true)
		go monitoring.MonitorScorerHealth(ctx, a.Scorer, scorerHealthy, monitoring.HEALTHCHECK_INTERVAL)

		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name: "scorer",
			Check: func(context.Context) error {
				if !scorerHealthy.Load() {
					return errors.New("scorer health check failing")
				}
				return nil
			},
		})
	}

	srv := httpserver.NewServer(cfg, a.Responder, a.Registry, a.Metrics, healthChecks)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("[Main] Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}
	slog.Info("[Main] Server stopped")
}
