package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     *AppError
		code    int
		message string
	}{
		{"not found", NewNotFoundError("batch not found", cause), http.StatusNotFound, "batch not found"},
		{"validation", NewValidationError("invalid body", cause), http.StatusBadRequest, "invalid body"},
		{"internal hides details", NewInternalError("failed to save batch", cause), http.StatusInternalServerError, "Internal server error"},
		{"bad gateway", NewBadGatewayError("registry unavailable", cause), http.StatusBadGateway, "registry unavailable"},
		{"unavailable", NewServiceUnavailableError("store disabled", nil), http.StatusServiceUnavailable, "store disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.StatusCode())
			assert.Equal(t, tt.message, tt.err.UserMessage())
			if tt.err.Err != nil {
				assert.ErrorIs(t, tt.err, cause)
			}
		})
	}
}

func TestInternalErrorKeepsDetailsForLogs(t *testing.T) {
	err := NewInternalError("failed to save batch", errors.New("disk full"))

	assert.Contains(t, err.Error(), "failed to save batch")
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, err.UserMessage(), "disk full")
}

func TestWithContext(t *testing.T) {
	err := NewBadGatewayError("registry lookup failed", errors.New("connection refused")).WithContext(`lookup "Acme"`)

	assert.Equal(t, `lookup "Acme"`, err.GetContext())
	assert.Equal(t, http.StatusBadGateway, err.StatusCode())
	require.Error(t, err.Unwrap())
}
