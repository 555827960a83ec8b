package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spacesedan/sentichat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteMetrics_RecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRouteMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.POST("/chat", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))
	}
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/chat", "2xx")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/health/live", "2xx")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}

func TestRouteMetrics_StatusClasses(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRouteMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.POST("/bad", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "bad") })
	e.POST("/boom", func(c echo.Context) error { return errors.New("boom") })
	e.POST("/upstream", func(c echo.Context) error { return c.NoContent(http.StatusBadGateway) })

	for _, path := range []string{"/bad", "/boom", "/upstream"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/bad", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/boom", "5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/upstream", "5xx")))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusNoContent))
	assert.Equal(t, "3xx", statusClass(http.StatusFound))
	assert.Equal(t, "4xx", statusClass(http.StatusMethodNotAllowed))
	assert.Equal(t, "5xx", statusClass(http.StatusBadGateway))
}

func TestSentimentMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSentimentMetrics(reg)

	m.ObserveResponse("positive")
	m.ObserveResponse("positive")
	m.ObserveResponse("neutral")
	m.ObserveScorerError()
	require.NoError(t, m.Publish(context.Background(), models.AnalysisEvent{Polarity: 0.8}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("positive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("neutral")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScorerErrors))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Polarity))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewSentimentMetrics(reg).ObserveResponse("negative")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `sentichat_sentiment_responses_total{sentiment="negative"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
