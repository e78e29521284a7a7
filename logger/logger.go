package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// knownFrames is the number of frames between a caller and runtime.Callers in (*GateLogger).log.
const knownFrames = 3

// The Logger interface defines the levels a logging can occur at.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)
}

// The SkipLogger interface defines a Logger that scrolls back
// the number of frames provided in order to ascertain the call site.
type SkipLogger interface {
	AddSkip(i int) SkipLogger
	Skip() int
	Logger
}

// GateLogger implements Logger using a [*log/slog.Logger].
type GateLogger struct {
	l    *slog.Logger
	skip int
}

// New constructs a [*GateLogger] emitting through l.
//
// If l is nil, New uses [log/slog.Default].
func New(l *slog.Logger) *GateLogger {
	if l == nil {
		l = slog.Default()
	}

	return &GateLogger{l: l}
}

// AddSkip replaces the current number of frames to scroll back
// when logging a message.
func (gl *GateLogger) AddSkip(i int) SkipLogger {
	newl := *gl
	newl.skip = i
	return &newl
}

// Skip returns the current amount of frames to scroll back
// when logging a message.
func (gl *GateLogger) Skip() int { return gl.skip }

// Debug writes a debug log.
func (gl *GateLogger) Debug(msg string, ctx *LogContext) { gl.log(slog.LevelDebug, msg, ctx) }

// Error writes an error log.
func (gl *GateLogger) Error(msg string, ctx *LogContext) { gl.log(slog.LevelError, msg, ctx) }

// Info writes an info log.
func (gl *GateLogger) Info(msg string, ctx *LogContext) { gl.log(slog.LevelInfo, msg, ctx) }

// Warn writes a warning log.
func (gl *GateLogger) Warn(msg string, ctx *LogContext) { gl.log(slog.LevelWarn, msg, ctx) }

// Slogger exposes the [*log/slog.Logger] backing gl.
func (gl *GateLogger) Slogger() *slog.Logger { return gl.l }

// log builds the record by hand so the source attribute points at
// the code calling gl rather than at gl itself.
func (gl *GateLogger) log(level slog.Level, msg string, ctx *LogContext) {
	bg := context.Background()
	if !gl.l.Enabled(bg, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(knownFrames+gl.skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if ctx != nil {
		r.AddAttrs(slog.Any(LogContextKey, ctx))
	}

	_ = gl.l.Handler().Handle(bg, r)
}
