/*
Package logger provides logging functionality to a gate app by defining the required behavior in [Logger]
and providing an implementation of it with [GateLogger].

# Overview

A [GateLogger] wraps a [*log/slog.Logger].
Which [log/slog.Handler] backs it decides how a log line looks:
in development, ranger configures colored text output;
elsewhere, JSON.

Log messages emitted by [GateLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

The call site is the code calling a [GateLogger] method,
not the [GateLogger] itself.
When a [GateLogger] is wrapped by another type, [SkipLogger] lets the wrapper
scroll back past its own frames.

The log context is a [LogContext],
providing data inessential to the message proper
but that gives a fuller picture of the application state at the time of logging.
A [LogContext] never logs the credentials in a request's query params.

# SentryLogger

When SENTRY_DSN is set, ranger wraps the app's logger in a [SentryLogger],
which ships warnings and errors carrying a [LogContext.Error] to Sentry.
*/
package logger
