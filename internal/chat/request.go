package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spacesedan/sentichat/internal/models"
)

// DecodeRequest reads a chat request body. An empty body counts as a
// request without a message.
func DecodeRequest(body io.Reader) (models.ChatRequest, error) {
	var req models.ChatRequest
	if body == nil {
		return req, nil
	}

	dec := json.NewDecoder(body)
	err := dec.Decode(&req)
	if errors.Is(err, io.EOF) {
		return models.ChatRequest{}, nil
	}
	if err != nil {
		return models.ChatRequest{}, fmt.Errorf("invalid chat request: %w", err)
	}

	// The body must hold exactly one JSON value.
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return models.ChatRequest{}, errors.New("invalid chat request: unexpected data after JSON object")
	}
	return req, nil
}
