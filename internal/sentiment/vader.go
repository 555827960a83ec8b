package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
)

// VaderScorer scores text in-process with the VADER lexicon. The lexicon is
// loaded once and only read afterwards, so one scorer serves all requests.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score maps the VADER compound score to polarity. Subjectivity is the share
// of the text VADER found opinion-bearing, i.e. positive plus negative
// proportion. It never returns an error.
func (v *VaderScorer) Score(_ context.Context, text string) (Scores, error) {
	if text == "" {
		return Scores{}, nil
	}

	sentiment := v.analyzer.PolarityScores(text)
	return Scores{
		Polarity:     sentiment.Compound,
		Subjectivity: sentiment.Positive + sentiment.Negative,
	}, nil
}
