package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/gate"
)

// ReportPanic recovers panics in the wrapped handler and reports them to Sentry.
//
// In local environments, panics are left for the server to handle.
func ReportPanic(env gate.Environment) Adapter {
	if env.IsLocal() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler { return sh.Handle(h) }
}
