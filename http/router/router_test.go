package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/auth"
	"github.com/xy-planning-network/gate/http/guard"
	"github.com/xy-planning-network/gate/http/middleware"
	"github.com/xy-planning-network/gate/http/resp"
	"github.com/xy-planning-network/gate/http/router"
	"github.com/xy-planning-network/gate/token"
)

type verifier bool

func (v verifier) Verify(context.Context, token.Store) auth.Verification {
	if v {
		return auth.Verification{Authenticated: true, User: &gate.User{TelegramID: 1}}
	}

	return auth.Verification{Err: auth.ErrNoToken}
}

func teapot() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestGuardedRoutes(t *testing.T) {
	for _, tc := range []struct {
		name     string
		verified bool
		code     int
	}{
		{"granted", true, http.StatusTeapot},
		{"denied", false, http.StatusFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			rt := router.New(gate.Testing, nil)
			g := guard.New(verifier(tc.verified), resp.NewResponder())
			rt.GuardedRoutes(g, []router.Route{{Path: "/dashboard", Method: http.MethodGet, Name: "dashboard", Handler: teapot()}})
			w := httptest.NewRecorder()

			// Act
			rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			// Assert
			require.Equal(t, tc.code, w.Code)
		})
	}
}

func TestHandleRoutes(t *testing.T) {
	// Arrange
	var order []string
	mark := func(name string) middleware.Adapter {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				h.ServeHTTP(w, r)
			})
		}
	}

	rt := router.New(gate.Testing, nil)
	rt.OnEveryRequest(mark("every"))
	rt.HandleRoutes(
		[]router.Route{{Path: "/", Method: http.MethodGet, Handler: teapot(), Middlewares: []middleware.Adapter{mark("route")}}},
		mark("group"),
	)

	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, []string{"every", "group", "route"}, order)

	// Arrange
	w = httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	// Assert
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPreflight(t *testing.T) {
	// Arrange
	rt := router.New(gate.Testing, nil)
	rt.Handle(router.Route{Path: "/api/me", Method: http.MethodGet, Handler: teapot(), Preflight: true})
	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/me", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
}

func TestHandleNotFound(t *testing.T) {
	// Arrange
	rt := router.New(gate.Testing, nil)
	rt.HandleNotFound(teapot())
	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
}

func TestStatic(t *testing.T) {
	// Arrange
	rt := router.New(gate.Testing, nil)
	rt.Static("/assets/", fstest.MapFS{"app.css": {Data: []byte("body{}")}})
	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/app.css", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Equal(t, "max-age=2592000", w.Header().Get("Cache-Control"))
}

func TestSubrouter(t *testing.T) {
	// Arrange
	rt := router.New(gate.Testing, nil)
	api := rt.Subrouter("/api")
	api.Handle(router.Route{Path: "/me", Method: http.MethodGet, Handler: teapot()})
	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
}
