package ranger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/auth"
	"github.com/xy-planning-network/gate/http/guard"
	"github.com/xy-planning-network/gate/http/middleware"
	"github.com/xy-planning-network/gate/http/resp"
	"github.com/xy-planning-network/gate/http/router"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/token"
)

// A Ranger manages and exposes all components of a gate app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	Auth  *auth.Client
	Env   gate.Environment
	Guard *guard.Guard

	cancel   context.CancelFunc
	ctx      context.Context
	httpLog  *slog.Logger
	l        logger.Logger
	sessions session.SessionStorer
	srv      *http.Server
	url      *url.URL
}

// New constructs a Ranger from environment variables.
// The options passed into New overwrite those defaults.
func New(opts ...RangerOption) (*Ranger, error) {
	o := &options{ctx: context.Background(), logOut: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	r := &Ranger{Env: gate.EnvVarOrEnv(environmentEnvVar, gate.Development)}
	r.ctx, r.cancel = context.WithCancel(o.ctx)
	r.l = defaultAppLogger(r.Env, o.logOut)
	r.httpLog = defaultHTTPLogger(r.Env, o.logOut)

	r.url = gate.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)
	if r.url == nil {
		return nil, fmt.Errorf("%w: %s is not a valid URL", gate.ErrBadConfig, BaseURLEnvVar)
	}

	var err error
	r.sessions, err = defaultSessionStore(r.Env)
	if err != nil {
		return nil, err
	}

	r.Auth, err = defaultAuthClient(r.l, o.hc)
	if err != nil {
		return nil, err
	}

	r.Responder = defaultResponder(r.l, r.url, defaultParser(r.Env, o.fsys))
	r.Guard = defaultGuard(r.Auth, r.Responder, r.l)

	mws := append(defaultMiddlewares(r.Env, r.l, r.httpLog, r.sessions), o.middlewares...)
	r.Router = defaultRouter(r.Env, r.url, r.Responder, r.httpLog, mws)
	r.Router.Handle(router.Route{
		Path:    MetricsPath,
		Method:  http.MethodGet,
		Name:    "metrics",
		Handler: promhttp.Handler(),
	})

	r.srv = o.srv
	if r.srv == nil {
		r.srv = defaultServer(r.ctx)
	}
	r.srv.Handler = r.Router

	r.l.Debug(fmt.Sprintf("ranger ready in %s, verifying against %s", r.Env, gate.EnvVarOrString(AuthServerURLEnvVar, DefaultAuthServerURL)), nil)

	return r, nil
}

func (r *Ranger) EmitLogger() logger.Logger               { return r.l }
func (r *Ranger) EmitHTTPLogger() *slog.Logger            { return r.httpLog }
func (r *Ranger) EmitSessionStore() session.SessionStorer { return r.sessions }

// CORS allows the origins in CORS_ORIGINS to call a route from the browser.
func (r *Ranger) CORS() middleware.Adapter { return defaultCORS() }

// Logout handles a request to log out,
// clearing the token and sending the viewer to "/".
func (r *Ranger) Logout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s, ok := token.FromContext(req.Context())
		if !ok {
			s = token.NewMemory("")
		}

		r.Auth.Logout(w, req, s)
	})
}

// Guide begins the web server.
//
// These, and (*Ranger).Shutdown, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (r *Ranger) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.srv.Addr), nil)
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		r.l.Error(err.Error(), &logger.LogContext{Error: err})
		r.cancel()
		return err
	case <-r.ctx.Done():
	}

	return r.Shutdown()
}

// Shutdown shutdowns the web server.
//
// Requests still in flight see their context cancelled,
// so pending verifications are abandoned without writing a response.
func (r *Ranger) Shutdown() error {
	r.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	err := r.srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}
