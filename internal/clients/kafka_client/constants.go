package kafka_client

import "time"

const (
	KAFKA_TOPIC_SENTIMENT_RESULTS = "sentiment-results" // one event per analyzed chat message
)

const (
	MAX_RETRIES   = 3
	RETRY_DELAY   = 100 * time.Millisecond
	FLUSH_TIMEOUT = 5 * time.Second

	FLUSH_POLL_INTERVAL = 50 * time.Millisecond
)
