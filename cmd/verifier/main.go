/*
verifier is the auth server gate verifies tokens against.

It answers POST /verify_jwt for HS256 JWTs signed with JWT_SECRET,
checking the token's user is still premium in PostgreSQL.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/middleware"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/postgres"
	"github.com/xy-planning-network/gate/ranger"
	"github.com/xy-planning-network/gate/verifier"
)

const (
	defaultPort   = "5002"
	portEnvVar    = "AUTH_PORT"
	secretEnvVar  = "JWT_SECRET"
	originsEnvVar = "CORS_ORIGINS"
)

func main() {
	env := gate.EnvVarOrEnv("ENVIRONMENT", gate.Development)

	var h slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	if env.IsDevelopment() {
		h = tint.NewHandler(os.Stdout, &tint.Options{AddSource: true, ReplaceAttr: logger.ColorizeLevel})
	}

	sl := slog.New(h.WithAttrs([]slog.Attr{{Key: gate.LogKindKey, Value: gate.AppLogKind}}))
	l := logger.New(sl)

	httpLog := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(env, l, sl, httpLog); err != nil {
		l.Error(err.Error(), &logger.LogContext{Error: err})
		os.Exit(1)
	}
}

func run(env gate.Environment, l *logger.GateLogger, sl, httpLog *slog.Logger) error {
	secret := os.Getenv(secretEnvVar)
	if secret == "" {
		return fmt.Errorf("%w: %s is not set", gate.ErrBadConfig, secretEnvVar)
	}

	db, err := postgres.Connect(ranger.NewPostgresConfig(), postgres.Migrations, env, sl)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}

	vh, err := verifier.NewHandler([]byte(secret), postgres.NewUserStore(db), l)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + gate.EnvVarOrString(portEnvVar, defaultPort),
		Handler:           newRouter(vh, env, httpLog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info(fmt.Sprintf("starting authentication server on %s", srv.Addr), nil)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("could not listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l.Info("shutting down authentication server", nil)
	return srv.Shutdown(shutdownCtx)
}

// newRouter binds the verification endpoints, allowing the CORS_ORIGINS to call them.
// Without CORS_ORIGINS, any origin may.
//
// Every request is logged to httpLog and, outside local environments, panics are reported to Sentry.
func newRouter(vh *verifier.Handler, env gate.Environment, httpLog *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/verify_jwt", vh.VerifyJWT).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", vh.Health).Methods(http.MethodGet)

	origins := []string{"*"}
	if v := os.Getenv(originsEnvVar); v != "" {
		origins = strings.Split(v, ",")
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	return middleware.Chain(r, middleware.LogRequest(httpLog), middleware.ReportPanic(env), cors)
}
