package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentichat/config"
	"github.com/spacesedan/sentichat/internal/chat"
	"github.com/spacesedan/sentichat/internal/clients"
	"github.com/spacesedan/sentichat/internal/clients/kafka_client"
	"github.com/spacesedan/sentichat/internal/metrics"
	"github.com/spacesedan/sentichat/internal/sentiment"
)

// App holds the dependencies shared by the HTTP server and the Lambda
// entrypoint. Everything in it is built once and safe for concurrent use.
type App struct {
	Config    *config.Config
	Registry  *prometheus.Registry
	Metrics   *metrics.SentimentMetrics
	Responder *chat.Responder

	// Scorer is set only when SCORER_URL points at a remote scoring service.
	Scorer *clients.ScorerClient

	events *kafka_client.EventPublisher
}

func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config:   cfg,
		Registry: metrics.NewRegistry(),
	}
	a.Metrics = metrics.NewSentimentMetrics(a.Registry)

	var scorer sentiment.Scorer
	if cfg.RemoteScoring() {
		a.Scorer = clients.NewScorerClient(cfg.ScorerURL, cfg.ScorerTimeout)
		scorer = a.Scorer
		slog.Info("[App] Using remote scorer", slog.String("url", cfg.ScorerURL))
	} else {
		scorer = sentiment.NewVaderScorer()
		slog.Info("[App] Using VADER scorer")
	}

	publishers := chat.MultiPublisher{a.Metrics}
	if cfg.PublishingEnabled() {
		ep, err := kafka_client.NewEventPublisher(kafka_client.NewKafkaConfig(cfg.KafkaBroker, cfg.KafkaTopic))
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		a.events = ep
		publishers = append(publishers, ep)
	}

	analyzer := sentiment.NewAnalyzer(scorer, sentiment.WithMarkdownStripping(cfg.StripMarkdown))
	a.Responder = chat.NewResponder(analyzer, chat.WithPublisher(publishers))

	return a, nil
}

// Flush waits for queued analysis events to reach the broker. It is a no-op
// when publishing is disabled.
func (a *App) Flush(ctx context.Context) error {
	if a.events == nil {
		return nil
	}
	return a.events.Flush(ctx)
}

// Close flushes pending analysis events. Safe to call more than once.
func (a *App) Close() {
	if a.events != nil {
		a.events.Close()
		a.events = nil
	}
}
