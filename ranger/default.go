package ranger

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/auth"
	"github.com/xy-planning-network/gate/http/guard"
	"github.com/xy-planning-network/gate/http/middleware"
	"github.com/xy-planning-network/gate/http/resp"
	"github.com/xy-planning-network/gate/http/router"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/http/template"
	"github.com/xy-planning-network/gate/logger"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "support@example.com"
	contactUsErr     = "Something went wrong. Please contact us at %s."

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar  = "LOG_LEVEL"
	logJSONEnvVar   = "LOG_JSON"
	defaultLogJSON  = false
	sentryDsnEnvVar = "SENTRY_DSN"

	// Database defaults
	dbHostEnvVar     = "DATABASE_HOST"
	defaultDBHost    = "localhost"
	dbNameEnvVar     = "DATABASE_NAME"
	dbPassEnvVar     = "DATABASE_PASSWORD"
	dbPortEnvVar     = "DATABASE_PORT"
	defaultDBPort    = "5432"
	dbSSLModeEnvVar  = "DATABASE_SSLMODE"
	defaultDBSSLMode = "prefer"
	dbURLEnvVar      = "DATABASE_URL"
	dbUserEnvVar     = "DATABASE_USER"

	// Auth server defaults
	AuthServerURLEnvVar      = "AUTH_SERVER_URL"
	DefaultAuthServerURL     = "http://localhost:5002"
	verifyTimeoutEnvVar      = "VERIFY_TIMEOUT"
	verifyCoalesceEnvVar     = "VERIFY_COALESCE"
	defaultVerifyCoalesce    = false
	loginPathEnvVar          = "LOGIN_PATH"
	homePathEnvVar           = "HOME_PATH"
	corsOriginsEnvVar        = "CORS_ORIGINS"
	rateLimitEnabledEnvVar   = "RATE_LIMIT"
	defaultRateLimitEnabled  = true
	MetricsPath              = "/metrics"
	defaultSessionMaxAgeSecs = 3600 * 24 * 7

	// Web server defaults
	DefaultHost               = "localhost"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 15 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	SessionName             = "gate-session"
	redisURLEnvVar          = "REDIS_URL"
	redisPassEnvVar         = "REDIS_PASSWORD"
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort

// defaultAppLogger constructs a [logger.Logger] configured for use in the application.
func defaultAppLogger(env gate.Environment, output io.Writer) logger.Logger {
	slogger := newSlogger(gate.AppLogKind, env, output)
	l := logger.New(slogger)
	l.Debug("setting up app logger", nil)
	if dsn := os.Getenv(sentryDsnEnvVar); dsn != "" {
		l.Debug("using SentryLogger for app logger", nil)
		return logger.NewSentryLogger(env, l, dsn)
	}

	return l
}

// defaultHTTPLogger constructs a [*log/slog.Logger] for use in HTTP router logging.
func defaultHTTPLogger(env gate.Environment, output io.Writer) *slog.Logger {
	sl := newSlogger(gate.HTTPLogKind, env, output)
	sl.Debug("setting up HTTP router logger")

	return sl
}

// newSlogger toggles constructing the specific [*log/slog.Logger]
// from the given parameters.
func newSlogger(kind slog.Value, env gate.Environment, out io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(gate.EnvVarOrLogLevel(logLevelEnvVar, slog.LevelInfo))

	useJSON := !env.IsDevelopment() || gate.EnvVarOrBool(logJSONEnvVar, defaultLogJSON)
	isHTTP := kind.String() == gate.HTTPLogKind.String()

	var handler slog.Handler
	switch {
	case isHTTP:
		opts := &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = logger.DeleteLevelAttr(groups, a)
				return logger.DeleteMessageAttr(groups, a)
			},
		}

		if useJSON {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}

	case useJSON:
		opts := &slog.HandlerOptions{
			AddSource:   true,
			Level:       lvl,
			ReplaceAttr: logger.TruncSourceAttr,
		}

		handler = slog.NewJSONHandler(out, opts)

	default:
		opts := &tint.Options{
			AddSource:  true,
			Level:      lvl,
			TimeFormat: "2006-01-02 15:04:05.000",
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = logger.ColorizeLevel(groups, a)
				return logger.TruncSourceAttr(groups, a)
			},
		}
		handler = tint.NewHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		{Key: gate.LogKindKey, Value: kind},
	})

	return slog.New(handler)
}

// defaultAuthClient constructs the [*auth.Client] verifying tokens against AUTH_SERVER_URL.
func defaultAuthClient(l logger.Logger, hc *http.Client) (*auth.Client, error) {
	opts := []auth.ClientOpt{
		auth.WithLogger(l),
		auth.WithTimeout(gate.EnvVarOrDuration(verifyTimeoutEnvVar, auth.DefaultTimeout)),
	}

	if hc != nil {
		opts = append(opts, auth.WithHTTPClient(hc))
	}

	if gate.EnvVarOrBool(verifyCoalesceEnvVar, defaultVerifyCoalesce) {
		opts = append(opts, auth.WithCoalescing())
	}

	return auth.New(gate.EnvVarOrString(AuthServerURLEnvVar, DefaultAuthServerURL), opts...)
}

// defaultGuard constructs the [*guard.Guard] protecting views with v.
func defaultGuard(v guard.Verifier, d *resp.Responder, l logger.Logger) *guard.Guard {
	return guard.New(
		v,
		d,
		guard.WithLogger(l),
		guard.WithLoginPath(gate.EnvVarOrString(loginPathEnvVar, guard.DefaultLoginPath)),
		guard.WithHomePath(gate.EnvVarOrString(homePathEnvVar, guard.DefaultHomePath)),
	)
}

// defaultMiddlewares assembles the chain every request passes through.
func defaultMiddlewares(
	env gate.Environment,
	l logger.Logger,
	httpLog *slog.Logger,
	sessions session.SessionStorer,
) []middleware.Adapter {
	var vs *middleware.Visitors
	if gate.EnvVarOrBool(rateLimitEnabledEnvVar, defaultRateLimitEnabled) {
		vs = middleware.NewVisitors()
	}

	return []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(httpLog),
		middleware.ForceHTTPS(env),
		middleware.RateLimit(vs),
		middleware.InjectSession(sessions),
		middleware.InjectTokenStore(),
		middleware.IngestToken(l),
	}
}

// defaultCORS allows the comma-separated CORS_ORIGINS to call JSON routes.
func defaultCORS() middleware.Adapter {
	var origins []string
	for _, o := range strings.Split(os.Getenv(corsOriginsEnvVar), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return middleware.CORS(origins...)
}

// defaultParser constructs a *template.Parse to be used
// when responding to HTTP requests with [*http/resp.Responder.Html].
//
// defaultParser makes available these functions in an HTML template:
//
//   - "env"
//   - "isDevelopment"
//   - "isProduction"
//   - "loginPath"
//   - "nonce", added by the Responder
//   - "rootUrl", added by the Responder
func defaultParser(env gate.Environment, files fs.FS) *template.Parse {
	opts := []template.ParserOptFn{
		template.WithFn(template.Env(env)),
		template.WithFn("isDevelopment", env.IsDevelopment),
		template.WithFn("isProduction", env.IsProduction),
		template.WithFn("loginPath", func() string {
			return gate.EnvVarOrString(loginPathEnvVar, guard.DefaultLoginPath)
		}),
	}

	if files != nil {
		opts = append(opts, template.WithFS(files))
	}

	return template.NewParser(opts...)
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(l logger.Logger, u *url.URL, p template.Parser) *resp.Responder {
	contact := gate.EnvVarOrString(ContactUsEnvVar, defaultContactUs)
	return resp.NewResponder(
		resp.WithContactErrMsg(fmt.Sprintf(contactUsErr, contact)),
		resp.WithErrTemplate(template.ErrorTmpl),
		resp.WithLayoutTemplate(template.LayoutTmpl),
		resp.WithLogger(l),
		resp.WithParser(p),
		resp.WithRootUrl(u.String()),
	)
}

// defaultRouter constructs a [*router.Router] to be used by the web server.
func defaultRouter(
	env gate.Environment,
	baseURL *url.URL,
	responder *resp.Responder,
	httpLog *slog.Logger,
	mws []middleware.Adapter,
) *router.Router {
	route := router.New(env, middleware.LogRequest(httpLog))
	route.OnEveryRequest(mws...)
	route.HandleNotFound(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		if strings.Contains(rx.Header.Get("Accept"), "text/html") && rx.URL.Path != baseURL.Path {
			responder.Redirect(wx, rx, resp.ToRoot())
			return
		}

		wx.WriteHeader(http.StatusNotFound)
	}))

	return route
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStore relies on these env vars:
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY, optional in TESTING
//   - REDIS_URL, optional; sessions are stored in cookies without it
//   - REDIS_PASSWORD, optional
//
// Both KEY env vars be valid hex encoded values; cf. [encoding/hex].
func defaultSessionStore(env gate.Environment) (session.SessionStorer, error) {
	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: SessionName,
	}

	if cfg.AuthKey == "" {
		return nil, fmt.Errorf("%w: %s is not set", gate.ErrBadConfig, SessionAuthKeyEnvVar)
	}

	if cfg.EncryptKey == "" && !env.IsTesting() {
		return nil, fmt.Errorf("%w: %s is not set", gate.ErrBadConfig, SessionEncryptKeyEnvVar)
	}

	args := []session.ServiceOpt{session.WithMaxAge(defaultSessionMaxAgeSecs)}
	if addr, pass := redisAddr(); addr != "" {
		args = append(args, session.WithRedis(addr, pass))
	}

	s, err := session.NewStoreService(cfg, args...)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// redisAddr reads REDIS_URL as either host:port or a redis:// URL.
func redisAddr() (addr, pass string) {
	raw := os.Getenv(redisURLEnvVar)
	pass = os.Getenv(redisPassEnvVar)
	if raw == "" {
		return "", pass
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		return raw, pass
	}

	if p, ok := u.User.Password(); ok && pass == "" {
		pass = p
	}

	return u.Host, pass
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := gate.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  gate.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  gate.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: gate.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}
