package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/logger"
)

// logValue renders lc the way a JSON handler would.
func logValue(t *testing.T, lc logger.LogContext) map[string]any {
	t.Helper()

	b := new(bytes.Buffer)
	slog.New(slog.NewJSONHandler(b, nil)).Info("test", logger.LogContextKey, lc)

	m := make(map[string]any)
	require.Nil(t, json.Unmarshal(b.Bytes(), &m))

	val, ok := m[logger.LogContextKey].(map[string]any)
	if !ok {
		return nil
	}

	return val
}

func TestLogContextLogValue(t *testing.T) {
	// Arrange + Act
	actual := logValue(t, logger.LogContext{})

	// Assert
	require.Nil(t, actual)

	// Arrange + Act
	actual = logValue(t, logger.LogContext{Data: map[string]any{"test": "data"}})

	// Assert
	require.Equal(t, map[string]any{"data": map[string]any{"test": "data"}}, actual)

	// Arrange + Act
	actual = logValue(t, logger.LogContext{Error: errors.New("test")})

	// Assert
	require.Equal(t, map[string]any{"error": "test"}, actual)

	// Arrange + Act
	actual = logValue(t, logger.LogContext{User: gate.User{TelegramID: 42, Username: "husserl"}})

	// Assert
	require.Equal(t, map[string]any{"user": map[string]any{"id": float64(42), "username": "husserl"}}, actual)

	// Arrange
	r := httptest.NewRequest(http.MethodGet, "https://example.com/login?token=secret", nil)

	// Act
	actual = logValue(t, logger.LogContext{Request: r})

	// Assert
	expected := map[string]any{
		"request": map[string]any{
			"method": http.MethodGet,
			"url":    "https://example.com/login?token=" + gate.LogMaskVal,
		},
	}
	require.Equal(t, expected, actual)
	require.Equal(t, "secret", r.URL.Query().Get("token"))
}

func TestCurrentCaller(t *testing.T) {
	var actual string
	func() { actual = logger.CurrentCaller() }()

	require.Contains(t, actual, "logger/context_test.go:")
}
