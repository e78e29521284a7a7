package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gate/http/middleware"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/token"
)

func TestInjectTokenStore(t *testing.T) {
	// Arrange
	store := session.NewStubStore(token.StorageKey, "abc")
	h := middleware.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := token.FromContext(r.Context())
		require.True(t, ok)

		tok, err := s.Get()
		require.Nil(t, err)
		require.Equal(t, "abc", tok)
		w.WriteHeader(http.StatusTeapot)
	}), middleware.InjectSession(store), middleware.InjectTokenStore())

	w := httptest.NewRecorder()

	// Act
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)

	// Arrange
	w = httptest.NewRecorder()
	h = middleware.InjectTokenStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := token.FromContext(r.Context())
		require.True(t, ok)

		_, err := s.Get()
		require.ErrorIs(t, err, token.ErrNoToken)
	}))

	// Act + Assert
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestIngestToken(t *testing.T) {
	tcs := []struct {
		name     string
		method   string
		target   string
		code     int
		location string
		stored   string
	}{
		{"no-token", http.MethodGet, "/dashboard?a=b", http.StatusTeapot, "", ""},
		{"empty-token", http.MethodGet, "/dashboard?token=", http.StatusTeapot, "", ""},
		{"captured", http.MethodGet, "/dashboard?token=abc&a=b", http.StatusFound, "/dashboard", "abc"},
		{"captured-root", http.MethodGet, "/?token=abc", http.StatusFound, "/", "abc"},
		{"head", http.MethodHead, "/dashboard?token=abc", http.StatusFound, "/dashboard", "abc"},
		{"post-ignored", http.MethodPost, "/dashboard?token=abc", http.StatusTeapot, "", ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			s := token.NewMemory("")
			h := middleware.Chain(
				teapotHandler(),
				func(h http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						h.ServeHTTP(w, r.WithContext(token.NewContext(r.Context(), s)))
					})
				},
				middleware.IngestToken(logger.New(nil)),
			)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, tc.target, nil)

			// Act
			h.ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			require.Equal(t, tc.target, r.URL.RequestURI())

			tok, _ := s.Get()
			require.Equal(t, tc.stored, tok)
		})
	}
}

func TestIngestTokenNeverLogsToken(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := slog.New(slog.NewJSONHandler(b, nil))
	h := middleware.Chain(
		teapotHandler(),
		middleware.LogRequest(l),
		middleware.InjectTokenStore(),
		middleware.IngestToken(logger.New(l)),
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/dashboard?token=supersecret", nil)

	// Act
	h.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusFound, w.Code)
	require.NotContains(t, b.String(), "supersecret")
	require.Contains(t, b.String(), "token=xxxxxx")
}
