package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentichat/config"
	"github.com/spacesedan/sentichat/internal/metrics"
	"github.com/spacesedan/sentichat/internal/models"
)

type chatResponder interface {
	Respond(ctx context.Context, message string) (models.ChatResponse, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	chat chatResponder

	registry         *prometheus.Registry
	routeMetrics     *metrics.RouteMetrics
	sentimentMetrics *metrics.SentimentMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires the routes onto a fresh echo instance. sentimentMetrics
// must already be registered on reg.
func NewServer(cfg *config.Config, chat chatResponder, reg *prometheus.Registry, sentimentMetrics *metrics.SentimentMetrics, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:             e,
		config:           cfg,
		chat:             chat,
		registry:         reg,
		routeMetrics:     metrics.NewRouteMetrics(reg),
		sentimentMetrics: sentimentMetrics,
		healthChecks:     healthChecks,
		startTime:        time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
