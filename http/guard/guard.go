package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/auth"
	"github.com/xy-planning-network/gate/http/middleware"
	"github.com/xy-planning-network/gate/http/resp"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/metrics"
	"github.com/xy-planning-network/gate/token"
)

const (
	DefaultHomePath  = "/dashboard"
	DefaultLoginPath = "/login"

	// FromParam carries the redirect state when no session is available.
	FromParam = "from"

	// RedirectFromKey is the session key the redirect state is stored under.
	RedirectFromKey = "gate-redirect-from"

	unmounted = "unmounted"
)

// A Verifier answers whether the token in a Store is accepted.
//
// *auth.Client implements Verifier.
type Verifier interface {
	Verify(ctx context.Context, s token.Store) auth.Verification
}

// A Guard protects views behind token verification.
type Guard struct {
	d         *resp.Responder
	homePath  string
	log       logger.Logger
	loginPath string
	v         Verifier
}

// An Opt configures a Guard.
type Opt func(*Guard)

// WithHomePath sets where a verified viewer landing on the login page goes when no redirect state exists.
func WithHomePath(p string) Opt {
	return func(g *Guard) {
		if isLocal(p) {
			g.homePath = p
		}
	}
}

// WithLogger sets the Logger guard decisions are reported to.
func WithLogger(l logger.Logger) Opt {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// WithLoginPath sets where denied viewers are sent.
func WithLoginPath(p string) Opt {
	return func(g *Guard) {
		if isLocal(p) {
			g.loginPath = p
		}
	}
}

// New constructs a Guard verifying with v and responding with d.
func New(v Verifier, d *resp.Responder, opts ...Opt) *Guard {
	g := &Guard{
		d:         d,
		homePath:  DefaultHomePath,
		log:       logger.New(nil),
		loginPath: DefaultLoginPath,
		v:         v,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Adapter exposes Protect as a middleware.Adapter.
func (g *Guard) Adapter() middleware.Adapter { return g.Protect }

// Protect verifies the viewer once per request before view runs.
//
// Granted requests reach view with the user stored under gate.CurrentUserKey.
// Denied requests never reach view: JSON clients receive 401,
// everyone else is redirected to the login path.
func (g *Guard) Protect(view http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeName(r)

		v := g.v.Verify(r.Context(), storeFor(r))
		if r.Context().Err() != nil {
			metrics.GuardDecisions.WithLabelValues(unmounted, route).Inc()
			return
		}

		if !v.Authenticated {
			metrics.GuardDecisions.WithLabelValues(Denied.String(), route).Inc()
			g.deny(w, r, v)
			return
		}

		metrics.GuardDecisions.WithLabelValues(Granted.String(), route).Inc()
		w.Header().Set("Cache-Control", "no-store")

		ctx := context.WithValue(r.Context(), gate.CurrentUserKey, v.User)
		view.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Login serves view to viewers who cannot be verified.
//
// A verified viewer is sent on to the path they were originally after,
// or the home path.
func (g *Guard) Login(view http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := g.v.Verify(r.Context(), storeFor(r))
		if r.Context().Err() != nil {
			return
		}

		if !v.Authenticated {
			view.ServeHTTP(w, r)
			return
		}

		if err := g.d.Redirect(w, r, resp.Url(g.popFrom(w, r))); err != nil {
			g.d.Err(w, r, err)
		}
	})
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, v auth.Verification) {
	g.log.Debug("guard denied request", &logger.LogContext{
		Data:    map[string]any{"outcome": v.Outcome()},
		Error:   v.Err,
		Request: r,
	})

	if wantsJSON(r.Header) {
		err := g.d.Json(w, r, resp.Code(http.StatusUnauthorized), resp.Data(map[string]string{"error": v.Outcome()}))
		if err != nil && !errors.Is(err, resp.ErrDone) {
			g.d.Err(w, r, err)
		}

		return
	}

	opts := []resp.Fn{resp.Url(g.loginPath)}
	s, err := g.d.Session(r.Context())
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		from := r.URL.RequestURI()
		if err != nil || s.Set(w, r, RedirectFromKey, from) != nil {
			opts = append(opts, resp.Param(FromParam, from))
		}
	}

	if err == nil {
		switch {
		case errors.Is(v.Err, auth.ErrInvalidToken):
			opts = append(opts, resp.Flash(session.Flash{Class: session.FlashWarning, Msg: session.ExpiredMsg}))
		case errors.Is(v.Err, auth.ErrTransient):
			opts = append(opts, resp.Flash(session.Flash{Class: session.FlashError, Msg: session.UnreachableMsg}))
		}
	}

	if err := g.d.Redirect(w, r, opts...); err != nil && !errors.Is(err, resp.ErrDone) {
		g.d.Err(w, r, err)
	}
}

// popFrom removes and returns the saved redirect state, falling back to the home path.
func (g *Guard) popFrom(w http.ResponseWriter, r *http.Request) string {
	if s, err := g.d.Session(r.Context()); err == nil {
		from, _ := s.Get(RedirectFromKey).(string)
		if from != "" {
			if err := s.Unset(w, r, RedirectFromKey); err != nil {
				g.log.Warn("failed clearing redirect state", &logger.LogContext{Error: err, Request: r})
			}
		}

		if isLocal(from) {
			return from
		}
	}

	if from := r.URL.Query().Get(FromParam); isLocal(from) {
		return from
	}

	return g.homePath
}

// storeFor pulls the request's token.Store out of its context.
// Without one, the request carries no token.
func storeFor(r *http.Request) token.Store {
	if s, ok := token.FromContext(r.Context()); ok {
		return s
	}

	return token.NewMemory("")
}

// isLocal reports whether p is a path on this host.
func isLocal(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}

	return !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func routeName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}

	if name := route.GetName(); name != "" {
		return name
	}

	if tmpl, err := route.GetPathTemplate(); err == nil {
		return tmpl
	}

	return "unmatched"
}

// wantsJSON asserts whether the request prefers JSON over rendered HTML.
func wantsJSON(header http.Header) bool {
	v := header.Get("Accept")
	if strings.HasPrefix(v, "text/html") {
		return false
	}

	return strings.Contains(v, "application/json")
}
