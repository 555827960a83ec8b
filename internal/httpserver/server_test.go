package httpserver

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentichat/config"
	"github.com/spacesedan/sentichat/internal/metrics"
	"github.com/spacesedan/sentichat/internal/models"
)

type mockResponder struct {
	respondFn func(ctx context.Context, message string) (models.ChatResponse, error)
}

func (m *mockResponder) Respond(ctx context.Context, message string) (models.ChatResponse, error) {
	return m.respondFn(ctx, message)
}

type testServerOption func(*[]HealthCheck)

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(hc *[]HealthCheck) {
		*hc = checks
	}
}

func newTestServer(t *testing.T, chat chatResponder, opts ...testServerOption) *Server {
	t.Helper()

	var checks []HealthCheck
	for _, opt := range opts {
		opt(&checks)
	}

	reg := prometheus.NewRegistry()
	return NewServer(&config.Config{Port: "0"}, chat, reg, metrics.NewSentimentMetrics(reg), checks)
}
