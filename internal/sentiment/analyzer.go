package sentiment

import (
	"context"
	"fmt"
	"math"

	"github.com/spacesedan/sentichat/internal/models"
)

const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// Scores is the raw output of a Scorer. Polarity is expected in [-1, 1]
// and Subjectivity in [0, 1]; Analyzer clamps both.
type Scores struct {
	Polarity     float64
	Subjectivity float64
}

type Scorer interface {
	Score(ctx context.Context, text string) (Scores, error)
}

type Analyzer struct {
	scorer        Scorer
	stripMarkdown bool
}

type Option func(*Analyzer)

// WithMarkdownStripping controls whether input is reduced to plain text
// before scoring. Enabled by default.
func WithMarkdownStripping(enabled bool) Option {
	return func(a *Analyzer) {
		a.stripMarkdown = enabled
	}
}

func NewAnalyzer(scorer Scorer, opts ...Option) *Analyzer {
	a := &Analyzer{
		scorer:        scorer,
		stripMarkdown: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	if a.stripMarkdown {
		text = ConvertMarkdownToText(text)
	}

	scores, err := a.scorer.Score(ctx, text)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to score text: %w", err)
	}

	polarity := clamp(scores.Polarity, -1, 1)
	return models.AnalysisResult{
		Polarity:     polarity,
		Subjectivity: clamp(scores.Subjectivity, 0, 1),
		Label:        Classify(polarity),
	}, nil
}

// Classify buckets a polarity score. Both thresholds are exclusive, so
// exactly ±0.1 is neutral.
func Classify(polarity float64) models.SentimentLabel {
	switch {
	case polarity > PositiveThreshold:
		return models.SentimentPositive
	case polarity < NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
