package clients

import "time"

const (
	MAX_RETRIES     = 3
	INITIAL_BACKOFF = 500 * time.Millisecond
	MAX_BACKOFF     = 4 * time.Second
	REQUEST_BUDGET  = 15 * time.Second // all attempts of one Score call, backoff included
	USER_AGENT      = "sentichat-client/1.0 (+https://github.com/spacesedan/sentichat)"
)

const (
	SCORER_ANALYZE_PATH = "/analyze"
	SCORER_HEALTH_PATH  = "/health"
)
