package models

type ScoreRequest struct {
	Text string `json:"text"`
}

type ScoreResponse struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}
