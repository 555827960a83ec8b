package models

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	Sentiment string `json:"sentiment"`
}

type AnalysisResult struct {
	Polarity     float64        `json:"polarity"`
	Subjectivity float64        `json:"subjectivity"`
	Label        SentimentLabel `json:"sentiment_label"`
}

// AnalysisEvent is published after every scored message. It deliberately
// carries no message text.
type AnalysisEvent struct {
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Polarity      float64   `json:"polarity"`
	Subjectivity  float64   `json:"subjectivity"`
	Sentiment     string    `json:"sentiment"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}
