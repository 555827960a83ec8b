package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentichat/internal/logging"
	"github.com/spacesedan/sentichat/internal/models"
)

const EmptyMessageReply = "Please enter a message to analyze."

const replyTemplate = `Your mood: %s

Sentiment Scores:
• Polarity: %.3f (range: -1.0 to 1.0)
• Subjectivity: %.3f (range: 0.0 to 1.0)

Explanation:
• Polarity measures how positive/negative your message is
• Subjectivity measures how opinion-based vs factual your message is`

type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.AnalysisResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, event models.AnalysisEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.AnalysisEvent) error { return nil }

// MultiPublisher fans an event out to every publisher, even when an earlier
// one fails.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event models.AnalysisEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Responder struct {
	analyzer  Analyzer
	publisher Publisher
	clock     clockwork.Clock
}

type Option func(*Responder)

func WithPublisher(p Publisher) Option {
	return func(r *Responder) {
		r.publisher = p
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(r *Responder) {
		r.clock = clock
	}
}

func NewResponder(analyzer Analyzer, opts ...Option) *Responder {
	r := &Responder{
		analyzer:  analyzer,
		publisher: NopPublisher{},
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond turns a chat message into a reply. Blank messages short-circuit
// to a fixed neutral prompt without touching the analyzer.
func (r *Responder) Respond(ctx context.Context, message string) (models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return models.ChatResponse{
			Reply:     EmptyMessageReply,
			Sentiment: string(models.SentimentNeutral),
		}, nil
	}

	result, err := r.analyzer.Analyze(ctx, message)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to analyze message: %w", err)
	}

	slog.DebugContext(ctx, "[ChatResponder] Message analyzed",
		slog.String("sentiment", string(result.Label)),
		slog.Float64("polarity", result.Polarity),
		slog.Float64("subjectivity", result.Subjectivity))

	if err := r.publisher.Publish(ctx, r.newEvent(ctx, result)); err != nil {
		slog.WarnContext(ctx, "[ChatResponder] Failed to publish analysis event",
			slog.String("error", err.Error()))
	}

	return models.ChatResponse{
		Reply:     FormatReply(result),
		Sentiment: string(result.Label),
	}, nil
}

func FormatReply(result models.AnalysisResult) string {
	return fmt.Sprintf(replyTemplate,
		strings.ToUpper(string(result.Label)),
		result.Polarity,
		result.Subjectivity)
}

func (r *Responder) newEvent(ctx context.Context, result models.AnalysisResult) models.AnalysisEvent {
	correlationID, _ := logging.CorrelationID(ctx)
	return models.AnalysisEvent{
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Polarity:      result.Polarity,
		Subjectivity:  result.Subjectivity,
		Sentiment:     string(result.Label),
		AnalyzedAt:    r.clock.Now().UTC(),
	}
}
