package middleware

import (
	"net/http"
	"net/url"

	"github.com/xy-planning-network/gate"
)

// ForceHTTPS redirects HTTP requests to HTTPS unless the environment is local.
//
// The "X-Forwarded-Proto" is used to check whether HTTP was requested due to a gate application
// running behind a proxy.
func ForceHTTPS(env gate.Environment) Adapter {
	if env.IsLocal() {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				handler.ServeHTTP(w, r)
				return
			}

			u := new(url.URL)
			*u = *r.URL
			u.Scheme = "https"
			u.Host = r.Host

			http.Redirect(w, r, u.String(), http.StatusPermanentRedirect)
		})
	}
}
