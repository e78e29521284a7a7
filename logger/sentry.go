package logger

import (
	"fmt"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/xy-planning-network/gate"
)

// A SentryLogger writes logs through the wrapped SkipLogger
// and ships warnings and errors carrying a LogContext.Error to Sentry.
type SentryLogger struct {
	l SkipLogger
}

// NewSentryLogger initializes the Sentry client with dsn
// and wraps l in a SentryLogger.
//
// If the client cannot be initialized, NewSentryLogger logs why and returns l.
func NewSentryLogger(env gate.Environment, l SkipLogger, dsn string) Logger {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:          dsn,
		Environment:  env.String(),
		IgnoreErrors: []string{"write: broken pipe", "context canceled"},
	})
	if err != nil {
		l.Error(fmt.Sprintf("unable to init Sentry: %s", err), nil)
		return l
	}

	return &SentryLogger{l: l.AddSkip(l.Skip() + 1)}
}

// AddSkip replaces the current number of frames to scroll back
// when logging a message.
func (sl *SentryLogger) AddSkip(i int) SkipLogger { return &SentryLogger{l: sl.l.AddSkip(i)} }

// Skip returns the current amount of frames to scroll back.
func (sl *SentryLogger) Skip() int { return sl.l.Skip() }

// Debug writes a debug log.
func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }

// Info writes an info log.
func (sl *SentryLogger) Info(msg string, ctx *LogContext) { sl.l.Info(msg, ctx) }

// Warn writes a warning log and sends it to Sentry.
func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.l.Warn(msg, ctx)
	sl.send(sentry.LevelWarning, ctx)
}

// Error writes an error log and sends it to Sentry.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.l.Error(msg, ctx)
	sl.send(sentry.LevelError, ctx)
}

// send ships the LogContext.Error to Sentry,
// including any additional data from LogContext.
func (sl *SentryLogger) send(level sentry.Level, ctx *LogContext) {
	if ctx == nil || ctx.Error == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if ctx.User != nil {
			scope.SetUser(sentry.User{
				ID:       strconv.FormatInt(ctx.User.GetID(), 10),
				Username: ctx.User.GetUsername(),
			})
		}

		if ctx.Request != nil {
			// NOTE: the request URL is masked rather than attaching the *http.Request,
			// which would ship a token query param to Sentry.
			scope.SetExtra("url", gate.MaskURL(ctx.Request.URL))
			scope.SetExtra("method", ctx.Request.Method)
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		scope.SetLevel(level)
		sentry.CaptureException(ctx.Error)
	})
}
