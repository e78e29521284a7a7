package router

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/guard"
	"github.com/xy-planning-network/gate/http/middleware"
)

// A Route maps a path and HTTP method to an [http.Handler].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	Path        string
	Method      string
	Name        string
	Handler     http.Handler
	Middlewares []middleware.Adapter

	// Preflight also matches OPTIONS requests, for routes behind [middleware.CORS].
	Preflight bool
}

// Router routes requests to their handlers, wrapping each in the middlewares it should have.
type Router struct {
	Env           gate.Environment
	everyReqStack []middleware.Adapter
	logReq        middleware.Adapter
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
//
// logReq also wraps requests matching no route.
func New(env gate.Environment, logReq middleware.Adapter) *Router {
	if logReq == nil {
		logReq = middleware.NoopAdapter
	}

	return &Router{Env: env, logReq: logReq, r: mux.NewRouter()}
}

// GuardedRoutes registers the set of Routes as those requiring a verified viewer.
// GuardedRoutes applies the given middlewares before g checks the viewer.
func (r *Router) GuardedRoutes(g *guard.Guard, routes []Route, middlewares ...middleware.Adapter) {
	mws := append(append([]middleware.Adapter{}, middlewares...), g.Adapter())
	r.HandleRoutes(routes, mws...)
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.Handler] as the default handler
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.Handler) {
	r.r.NotFoundHandler = middleware.Chain(
		handler,
		r.logReq,
		middleware.ReportPanic(r.Env),
	)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := make([]middleware.Adapter, 0, len(r.everyReqStack)+len(middlewares)+len(route.Middlewares)+1)
		mws = append(mws, r.everyReqStack...)
		mws = append(mws, middleware.ReportPanic(r.Env))
		mws = append(mws, middlewares...)
		mws = append(mws, route.Middlewares...)

		methods := []string{route.Method}
		if route.Preflight {
			methods = append(methods, http.MethodOptions)
		}

		mr := r.r.Handle(route.Path, middleware.Chain(route.Handler, mws...)).Methods(methods...)
		if route.Name != "" {
			mr.Name(route.Name)
		}
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
//
// Only routes registered afterwards receive them.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// Static serves the files in fsys under prefix, with long-lived caching.
func (r *Router) Static(prefix string, fsys fs.FS) {
	r.r.PathPrefix(prefix).Handler(middleware.Chain(
		http.StripPrefix(prefix, http.FileServer(http.FS(fsys))),
		r.logReq,
		cacheControlMiddleware(),
	))
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/api") handles requests to endpoints like /api/me
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:           r.Env,
		r:             r.r.PathPrefix(prefix).Subrouter(),
		logReq:        r.logReq,
		everyReqStack: append([]middleware.Adapter{}, r.everyReqStack...),
	}
}

// cacheControlMiddleware helps by adding a "Cache-Control" header to the response.
func cacheControlMiddleware() middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "max-age=2592000") // 30 days
			handler.ServeHTTP(w, r)
		})
	}
}
