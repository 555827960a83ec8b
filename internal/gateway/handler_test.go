package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spacesedan/sentichat/internal/chat"
	"github.com/spacesedan/sentichat/internal/logging"
	"github.com/spacesedan/sentichat/internal/models"
	"github.com/spacesedan/sentichat/internal/sentiment"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	out models.ChatResponse
	err error
	in  string
	ctx context.Context
}

func (s *stubResponder) Respond(ctx context.Context, message string) (models.ChatResponse, error) {
	s.in = message
	s.ctx = ctx
	return s.out, s.err
}

type countingFlusher struct {
	calls       int
	err         error
	hasDeadline bool
}

func (f *countingFlusher) Flush(ctx context.Context) error {
	f.calls++
	_, f.hasDeadline = ctx.Deadline()
	return f.err
}

func makeEvent(method, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       "/chat",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "req-abc",
		},
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	responder := &stubResponder{out: models.ChatResponse{Reply: "Your mood: NEGATIVE", Sentiment: "negative"}}
	h, err := NewHandler(responder)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, `{"message":"awful"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "awful", responder.in)

	out := parseBody[models.ChatResponse](t, resp.Body)
	require.Equal(t, "negative", out.Sentiment)
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	require.Equal(t, "req-abc", resp.Headers["X-Request-Id"])

	id, ok := logging.CorrelationID(responder.ctx)
	require.True(t, ok)
	require.Equal(t, "req-abc", id)
}

func TestHandle_Base64Body(t *testing.T) {
	responder := &stubResponder{out: models.ChatResponse{Reply: "r", Sentiment: "neutral"}}
	h, err := NewHandler(responder)
	require.NoError(t, err)

	event := makeEvent(http.MethodPost, base64.StdEncoding.EncodeToString([]byte(`{"message":"encoded"}`)))
	event.IsBase64Encoded = true

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "encoded", responder.in)
}

func TestHandle_Preflight(t *testing.T) {
	h, err := NewHandler(&stubResponder{})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodOptions, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	require.Contains(t, resp.Headers["Access-Control-Allow-Methods"], http.MethodPost)
	require.Empty(t, resp.Body)
}

func TestHandle_WrongMethod(t *testing.T) {
	h, err := NewHandler(&stubResponder{})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_InvalidBody(t *testing.T) {
	responder := &stubResponder{}
	h, err := NewHandler(responder)
	require.NoError(t, err)

	for _, event := range []events.APIGatewayProxyRequest{
		makeEvent(http.MethodPost, `not-json`),
		func() events.APIGatewayProxyRequest {
			e := makeEvent(http.MethodPost, "%%%")
			e.IsBase64Encoded = true
			return e
		}(),
	} {
		resp, err := h.Handle(context.Background(), event)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "validation", parseBody[map[string]any](t, resp.Body)["type"])
	}
	require.Empty(t, responder.in)
}

func TestHandle_ResponderError(t *testing.T) {
	h, err := NewHandler(&stubResponder{err: errors.New("scorer down")})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, `{"message":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.NotContains(t, resp.Body, "scorer down")
}

func TestHandle_GeneratesCorrelationID(t *testing.T) {
	responder := &stubResponder{out: models.ChatResponse{Reply: "r", Sentiment: "neutral"}}
	h, err := NewHandler(responder)
	require.NoError(t, err)

	event := makeEvent(http.MethodPost, `{"message":"hi"}`)
	event.RequestContext.RequestID = ""

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Headers["X-Request-Id"])
}

func TestHandle_EmptyMessageWithVader(t *testing.T) {
	h, err := NewHandler(chat.NewResponder(sentiment.NewAnalyzer(sentiment.NewVaderScorer())))
	require.NoError(t, err)

	for _, body := range []string{``, `{}`, `{"message":"  "}`} {
		resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, body))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"reply":"Please enter a message to analyze.","sentiment":"neutral"}`, resp.Body)
	}
}

func TestHandle_FlushesEventsAfterChat(t *testing.T) {
	flusher := &countingFlusher{}
	h, err := NewHandler(&stubResponder{out: models.ChatResponse{Reply: "r", Sentiment: "neutral"}}, WithFlusher(flusher))
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, `{"message":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, flusher.calls)
	require.True(t, flusher.hasDeadline)

	_, err = h.Handle(context.Background(), makeEvent(http.MethodOptions, ""))
	require.NoError(t, err)
	require.Equal(t, 1, flusher.calls)
}

func TestHandle_FlushFailureKeepsResponse(t *testing.T) {
	flusher := &countingFlusher{err: errors.New("broker unreachable")}
	h, err := NewHandler(&stubResponder{out: models.ChatResponse{Reply: "r", Sentiment: "positive"}}, WithFlusher(flusher))
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, `{"message":"great"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "positive", parseBody[models.ChatResponse](t, resp.Body).Sentiment)
	require.Equal(t, 1, flusher.calls)
}
