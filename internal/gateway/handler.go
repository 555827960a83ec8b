package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spacesedan/sentichat/internal/chat"
	apperrors "github.com/spacesedan/sentichat/internal/errors"
	"github.com/spacesedan/sentichat/internal/logging"
	"github.com/spacesedan/sentichat/internal/models"
)

type chatResponder interface {
	Respond(ctx context.Context, message string) (models.ChatResponse, error)
}

// Flusher drains asynchronously published events. The Lambda environment
// may be frozen as soon as Handle returns, so queued events are flushed
// before every response.
type Flusher interface {
	Flush(ctx context.Context) error
}

const flushTimeout = 2 * time.Second

// Handler serves POST /chat behind an API Gateway proxy integration.
type Handler struct {
	chat    chatResponder
	flusher Flusher
}

type Option func(*Handler)

func WithFlusher(f Flusher) Option {
	return func(h *Handler) {
		h.flusher = f
	}
}

func NewHandler(chat chatResponder, opts ...Option) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("chat responder is required")
	}
	h := &Handler{chat: chat}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := req.RequestContext.RequestID
	if correlationID == "" {
		correlationID = logging.NewCorrelationID()
	}
	ctx = logging.WithCorrelationID(ctx, correlationID)

	switch strings.ToUpper(req.HTTPMethod) {
	case http.MethodOptions:
		return respond(http.StatusNoContent, correlationID, ""), nil
	case http.MethodPost:
	default:
		return respondError(ctx, correlationID, &apperrors.Error{
			Type:    apperrors.TypeValidation,
			Message: "method not allowed",
		}, http.StatusMethodNotAllowed), nil
	}

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return respondError(ctx, correlationID, apperrors.ValidationError("invalid request body", err), 0), nil
		}
		body = string(decoded)
	}

	chatReq, err := chat.DecodeRequest(strings.NewReader(body))
	if err != nil {
		return respondError(ctx, correlationID, apperrors.ValidationError("invalid request body", err), 0), nil
	}

	resp, err := h.chat.Respond(ctx, chatReq.Message)
	h.flush(ctx)
	if err != nil {
		return respondError(ctx, correlationID, apperrors.ExternalError("sentiment analysis unavailable", err), 0), nil
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return respondError(ctx, correlationID, apperrors.InternalError("failed to encode response", err), 0), nil
	}

	slog.InfoContext(ctx, "[ChatHandler] Message handled", slog.String("sentiment", resp.Sentiment))
	return respond(http.StatusOK, correlationID, string(payload)), nil
}

func (h *Handler) flush(ctx context.Context) {
	if h.flusher == nil {
		return
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if err := h.flusher.Flush(flushCtx); err != nil {
		slog.WarnContext(ctx, "[ChatHandler] Failed to flush analysis events", slog.String("error", err.Error()))
	}
}

// respondError renders err; a zero status means the error's own status.
func respondError(ctx context.Context, correlationID string, err *apperrors.Error, status int) events.APIGatewayProxyResponse {
	if status == 0 {
		status = err.HTTPStatus()
	}

	attrs := []any{"error_type", err.Type, "message", err.Message, "status", status}
	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause)
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "[ChatHandler] Request failed", attrs...)
	} else {
		slog.InfoContext(ctx, "[ChatHandler] Request rejected", attrs...)
	}

	payload, _ := json.Marshal(err.ToResponse())
	return respond(status, correlationID, string(payload))
}

func respond(status int, correlationID, body string) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
		"X-Request-Id":                 correlationID,
	}
	if body != "" {
		headers["Content-Type"] = "application/json"
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}
