package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentichat/internal/models"
)

type SentimentMetrics struct {
	AnalysesTotal *prometheus.CounterVec
	Polarity      prometheus.Histogram
	ScorerErrors  prometheus.Counter
}

func NewSentimentMetrics(reg prometheus.Registerer) *SentimentMetrics {
	m := &SentimentMetrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sentiment",
			Name:      "responses_total",
			Help:      "Chat responses by sentiment label.",
		}, []string{"sentiment"}),
		Polarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sentiment",
			Name:      "polarity",
			Help:      "Distribution of polarity scores for analyzed messages.",
			Buckets:   prometheus.LinearBuckets(-1, 0.2, 11),
		}),
		ScorerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sentiment",
			Name:      "scorer_errors_total",
			Help:      "Messages that could not be scored.",
		}),
	}

	reg.MustRegister(m.AnalysesTotal, m.Polarity, m.ScorerErrors)
	return m
}

func (m *SentimentMetrics) ObserveResponse(sentiment string) {
	m.AnalysesTotal.WithLabelValues(sentiment).Inc()
}

// Publish records the polarity of an analysis event, so the metrics can sit
// alongside other chat publishers.
func (m *SentimentMetrics) Publish(_ context.Context, event models.AnalysisEvent) error {
	m.Polarity.Observe(event.Polarity)
	return nil
}

func (m *SentimentMetrics) ObserveScorerError() {
	m.ScorerErrors.Inc()
}
