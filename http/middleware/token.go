package middleware

import (
	"net/http"
	"net/url"

	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/token"
)

// InjectTokenStore stores a token.Store backed by the request's session in the request context.
//
// Without a session, as set by InjectSession, the Store is empty and lives only as long as the request.
func InjectTokenStore() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s token.Store = token.NewMemory("")
			if sess, ok := r.Context().Value(gate.SessionKey).(session.Sessionable); ok {
				s = token.NewSessionStore(w, r, sess)
			}

			h.ServeHTTP(w, r.WithContext(token.NewContext(r.Context(), s)))
		})
	}
}

// IngestToken captures a token handed back by the login service in the "token" query parameter.
//
// On capture, IngestToken redirects to the same path without any query string,
// so the token does not linger in the address bar, browser history or access logs downstream.
// Only GET and HEAD requests are inspected.
//
// Run after InjectTokenStore.
func IngestToken(l logger.Logger) Adapter {
	if l == nil {
		l = logger.New(nil)
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				h.ServeHTTP(w, r)
				return
			}

			s, ok := token.FromContext(r.Context())
			if !ok {
				h.ServeHTTP(w, r)
				return
			}

			u := new(url.URL)
			*u = *r.URL
			captured, err := token.Ingest(s, u)
			if err != nil {
				l.Error("failed storing token", &logger.LogContext{Caller: logger.CurrentCaller(), Error: err, Request: r})
			}

			if !captured {
				h.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, u.RequestURI(), http.StatusFound)
		})
	}
}
