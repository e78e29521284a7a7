package logger

import (
	"log/slog"
	"net/http"
	"runtime"
	"strconv"

	"github.com/xy-planning-network/gate"
)

// LogContextKey is the attribute key a LogContext is logged under.
const LogContextKey = "log_context"

var _ slog.LogValuer = LogContext{}

// LogUser is the interface exposing attributes of a user to a LogContext.
type LogUser interface {
	// GetID retrieves the auth server's identifier for a user.
	GetID() int64

	// GetUsername retrieves the user's handle.
	GetUsername() string
}

// A LogContext provides additional information
// for a [Logger] method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller helps goroutines identify the callers of the process that spawned it.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	//
	// Query params carrying credentials are masked.
	Request *http.Request

	// User is the user whose verification was active during the logging event.
	User LogUser
}

// LogValue drops zero-value fields from the logged representation of lc.
//
// LogValue implements [log/slog.LogValuer].
func (lc LogContext) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 5)
	if lc.Caller != "" {
		attrs = append(attrs, slog.String("caller", lc.Caller))
	}

	if lc.Data != nil {
		attrs = append(attrs, slog.Any("data", lc.Data))
	}

	if lc.Error != nil {
		attrs = append(attrs, slog.String("error", lc.Error.Error()))
	}

	if lc.Request != nil {
		attrs = append(attrs, slog.Group(
			"request",
			slog.String("method", lc.Request.Method),
			slog.String("url", gate.MaskURL(lc.Request.URL)),
		))
	}

	if lc.User != nil {
		u := make([]any, 0, 2)
		if id := lc.User.GetID(); id != 0 {
			u = append(u, slog.Int64("id", id))
		}

		if name := lc.User.GetUsername(); name != "" {
			u = append(u, slog.String("username", name))
		}

		if len(u) > 0 {
			attrs = append(attrs, slog.Group("user", u...))
		}
	}

	return slog.GroupValue(attrs...)
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
//
//	myFunc() {		<- returns this caller
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return truncPath(file) + ":" + strconv.Itoa(line)
}
