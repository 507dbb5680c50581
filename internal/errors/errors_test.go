package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *AppError
		other    *AppError
	}{
		{"provider", NewProviderError(fmt.Errorf("502"), "openai"), ErrProviderFailed, ErrParseFailed},
		{"parse", NewParseError(nil, "no JSON found"), ErrParseFailed, ErrProviderFailed},
		{"entitlement", NewEntitlementError("free tier"), ErrEntitlementDenied, ErrValidation},
		{"validation", NewValidationError("bad"), ErrValidation, ErrProfileIncomplete},
		{"profile", NewProfileIncompleteError([]string{"age"}), ErrProfileIncomplete, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("refresh: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.False(t, errors.Is(wrapped, tt.other))
		})
	}
}

func TestProviderErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewProviderError(cause, "gemini")

	assert.Equal(t, "AI fetch failed", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "gemini", err.Context["provider"])
	assert.Equal(t, ErrorTypeExternal, TypeOf(fmt.Errorf("x: %w", err)))
	assert.Equal(t, ErrorType(""), TypeOf(cause))
}

func TestProfileIncompleteMessage(t *testing.T) {
	err := NewProfileIncompleteError([]string{"age", "gender"})
	assert.Contains(t, err.Error(), "missing age, gender")
}

func TestHandlerLogsByType(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	h.Handle(context.Background(), NewParseError(nil, "no JSON"))
	require.Contains(t, buf.String(), "AI response parse error")

	buf.Reset()
	h.Handle(context.Background(), errors.New("plain"))
	require.Contains(t, buf.String(), "Unhandled error")

	buf.Reset()
	h.Handle(context.Background(), nil)
	assert.Empty(t, buf.String())
}
