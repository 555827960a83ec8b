package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentichat/internal/chat"
	apperrors "github.com/spacesedan/sentichat/internal/errors"
)

func (s *Server) handleChat(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := chat.DecodeRequest(c.Request().Body)
	if err != nil {
		return apperrors.ValidationError("invalid request body", err)
	}

	resp, err := s.chat.Respond(ctx, req.Message)
	if err != nil {
		s.sentimentMetrics.ObserveScorerError()
		return apperrors.ExternalError("sentiment analysis unavailable", err)
	}
	s.sentimentMetrics.ObserveResponse(resp.Sentiment)

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
