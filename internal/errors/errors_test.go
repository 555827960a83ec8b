package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("bad", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ExternalError("upstream", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, (&Error{Type: "unknown"}).HTTPStatus())
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalError("scorer unavailable", cause)

	assert.Equal(t, "external: scorer unavailable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "validation: bad input", ValidationError("bad input", nil).Error())
}

func TestWithField(t *testing.T) {
	err := (&Error{Type: TypeValidation, Message: "bad"}).WithField("field", "message")
	assert.Equal(t, map[string]any{"field": "message"}, err.Context)
}

func TestToResponse_HidesCause(t *testing.T) {
	resp := InternalError("failed", errors.New("secret detail")).ToResponse()
	assert.Equal(t, "failed", resp.Error)
	assert.Equal(t, TypeInternal, resp.Type)
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := ValidationError("bad", nil)
	wrapped := fmt.Errorf("handler: %w", original)
	assert.Same(t, original, AsStructuredError(wrapped))

	plain := errors.New("plain")
	structured := AsStructuredError(plain)
	require.NotNil(t, structured)
	assert.Equal(t, TypeInternal, structured.Type)
	assert.ErrorIs(t, structured, plain)
}
