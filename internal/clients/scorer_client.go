package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/spacesedan/sentichat/internal/models"
	"github.com/spacesedan/sentichat/internal/sentiment"
)

// ErrScorerUnavailable is returned while the circuit breaker is open.
var ErrScorerUnavailable = errors.New("sentiment scorer unavailable")

// StatusError is a non-2xx answer from the scoring service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scorer returned status %d", e.Code)
}

// ScorerClient talks to a remote sentiment scoring service. It implements
// sentiment.Scorer.
type ScorerClient struct {
	Client *http.Client

	analyzeEndpoint string
	healthEndpoint  string
	maxRetries      int
	initialBackoff  time.Duration
	requestBudget   time.Duration
	breaker         *gobreaker.CircuitBreaker
}

type ScorerOption func(*ScorerClient)

func WithRetries(maxRetries int, initialBackoff time.Duration) ScorerOption {
	return func(s *ScorerClient) {
		s.maxRetries = maxRetries
		s.initialBackoff = initialBackoff
	}
}

// WithRequestBudget caps the total time one Score call may spend across
// attempts and backoff.
func WithRequestBudget(budget time.Duration) ScorerOption {
	return func(s *ScorerClient) {
		s.requestBudget = budget
	}
}

func WithBreakerSettings(settings gobreaker.Settings) ScorerOption {
	return func(s *ScorerClient) {
		if settings.IsSuccessful == nil {
			settings.IsSuccessful = breakerSuccess
		}
		s.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

func NewScorerClient(baseURL string, timeout time.Duration, opts ...ScorerOption) *ScorerClient {
	baseURL = strings.TrimRight(baseURL, "/")

	slog.Info("[ScorerClient] Initializing Client",
		slog.String("base_url", baseURL),
		slog.Duration("timeout", timeout))

	s := &ScorerClient{
		Client:          &http.Client{Timeout: timeout},
		analyzeEndpoint: baseURL + SCORER_ANALYZE_PATH,
		healthEndpoint:  baseURL + SCORER_HEALTH_PATH,
		maxRetries:      MAX_RETRIES,
		initialBackoff:  INITIAL_BACKOFF,
		requestBudget:   REQUEST_BUDGET,
		breaker:         gobreaker.NewCircuitBreaker(defaultBreakerSettings()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "scorer",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("[ScorerClient] Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
}

// breakerSuccess treats a 4xx as the caller's fault, so rejected input
// never opens the circuit.
func breakerSuccess(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code < http.StatusInternalServerError
	}
	return err == nil
}

func (s *ScorerClient) Score(ctx context.Context, text string) (sentiment.Scores, error) {
	start := time.Now()

	if s.requestBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestBudget)
		defer cancel()
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		var result models.ScoreResponse
		if err := s.postJSON(ctx, s.analyzeEndpoint, models.ScoreRequest{Text: text}, &result); err != nil {
			return nil, err
		}
		return result, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return sentiment.Scores{}, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	if err != nil {
		slog.ErrorContext(ctx, "[ScorerClient] Scoring request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return sentiment.Scores{}, err
	}

	result := out.(models.ScoreResponse)
	slog.DebugContext(ctx, "[ScorerClient] Scoring request successful",
		slog.Duration("elapsed", time.Since(start)))

	return sentiment.Scores{
		Polarity:     result.Polarity,
		Subjectivity: result.Subjectivity,
	}, nil
}

// HealthCheck reports whether the scoring service answers its health
// endpoint with a 2xx status.
func (s *ScorerClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.healthEndpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := s.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// DoWithRetry retries transport failures and 5xx responses with exponential
// backoff. newReq is called once per attempt so the body is never reused.
func (s *ScorerClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := s.initialBackoff

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		req, buildErr := newReq()
		if buildErr != nil {
			return nil, buildErr
		}

		resp, err = s.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.WarnContext(ctx, "[ScorerClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if attempt == s.maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	if err == nil {
		err = fmt.Errorf("scorer returned %s", errMsg(nil, resp))
	}
	return nil, err
}

func (s *ScorerClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := s.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		slog.ErrorContext(ctx, "[ScorerClient] Unexpected status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.ErrorContext(ctx, "[ScorerClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
