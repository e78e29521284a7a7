package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/session"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under gate.SessionKey.
//
// A session that cannot be decoded is replaced by a fresh one.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := store.GetSession(r)
			ctx := context.WithValue(r.Context(), gate.SessionKey, s)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
