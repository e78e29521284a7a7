package resp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/resp"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/http/template"
)

const jsonMediaType = "application/json; charset=UTF-8"

var testFS = fstest.MapFS{
	"tmpl/layout.tmpl": {Data: []byte(`<main>{{ template "content" . }}</main>`)},
	"tmpl/hello.tmpl": {Data: []byte(
		`{{ define "content" }}{{ range .Flashes }}[{{ .Msg }}]{{ end }}` +
			`{{ with .CurrentUser }}{{ .Username }}{{ end }}:{{ .Data }}{{ end }}`,
	)},
	"tmpl/broken.tmpl": {Data: []byte(`{{ define "content" }}{{ .Data.Nope.Nope }}{{ end }}`)},
}

func newResponder() *resp.Responder {
	return resp.NewResponder(
		resp.WithParser(template.NewParser(template.WithFS(testFS))),
		resp.WithLayoutTemplate("tmpl/layout.tmpl"),
		resp.WithRootUrl("https://example.com"),
		resp.WithContactErrMsg("Email us."),
	)
}

func withUser(r *http.Request) *http.Request {
	u := &gate.User{TelegramID: 42, Username: "husserl", IsPremium: true}
	return r.WithContext(context.WithValue(r.Context(), gate.CurrentUserKey, u))
}

func withSession(r *http.Request, s session.GateSessionable) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), gate.SessionKey, s))
}

func TestResponderDone(t *testing.T) {
	// Arrange
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	ctx, cancel := context.WithCancel(r.Context())
	r = r.WithContext(ctx)
	w := httptest.NewRecorder()
	d := newResponder()

	cancel()

	// Act
	jsonErr := d.Json(w, r, resp.Code(http.StatusTeapot))
	htmlErr := d.Html(w, r, resp.Tmpls("tmpl/hello.tmpl"))
	d.Err(w, r, errors.New("boom"))

	// Assert
	require.ErrorIs(t, jsonErr, resp.ErrDone)
	require.ErrorIs(t, htmlErr, resp.ErrDone)
	require.False(t, w.Flushed)
	require.Zero(t, w.Body.Len())
}

func TestResponderCurrentUser(t *testing.T) {
	// Arrange
	d := newResponder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	u, err := d.CurrentUser(r.Context())

	// Assert
	require.ErrorIs(t, err, resp.ErrNotFound)
	require.Nil(t, u)

	// Act
	u, err = d.CurrentUser(withUser(r).Context())

	// Assert
	require.Nil(t, err)
	require.Equal(t, "husserl", u.Username)
}

func TestResponderSession(t *testing.T) {
	// Arrange
	d := newResponder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	_, err := d.Session(r.Context())

	// Assert
	require.ErrorIs(t, err, resp.ErrNotFound)

	// Act
	_, err = d.Session(context.WithValue(r.Context(), gate.SessionKey, "nope"))

	// Assert
	require.ErrorIs(t, err, resp.ErrInvalid)

	// Act
	s, err := d.Session(withSession(r, session.NewStub()).Context())

	// Assert
	require.Nil(t, err)
	require.NotNil(t, s)
}

func TestResponderHtml(t *testing.T) {
	// Arrange
	d := newResponder()
	s := session.NewStub()
	r := withSession(withUser(httptest.NewRequest(http.MethodGet, "/", nil)), s)
	w := httptest.NewRecorder()
	require.Nil(t, s.SetFlash(w, r, session.Flash{Class: session.FlashInfo, Msg: "hi"}))

	// Act
	err := d.Html(w, r, resp.Tmpls("tmpl/hello.tmpl"), resp.Data("data"))

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<main>[hi]husserl:data</main>", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestResponderHtmlErrors(t *testing.T) {
	tcs := []struct {
		name string
		d    *resp.Responder
		opts []resp.Fn
	}{
		{"no-parser", resp.NewResponder(), []resp.Fn{resp.Tmpls("tmpl/hello.tmpl")}},
		{"no-templates", newResponder(), nil},
		{"missing-template", newResponder(), []resp.Fn{resp.Tmpls("tmpl/nope.tmpl")}},
		{"execute-fails", newResponder(), []resp.Fn{resp.Tmpls("tmpl/broken.tmpl"), resp.Data(1)}},
		{"bad-option", newResponder(), []resp.Fn{resp.Param("k", "v"), resp.Tmpls("tmpl/hello.tmpl")}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			// Act
			err := tc.d.Html(w, r, tc.opts...)

			// Assert
			require.NotNil(t, err)
			require.Equal(t, http.StatusInternalServerError, w.Code)
		})
	}

	t.Run("error-template", func(t *testing.T) {
		// Arrange
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		// Act
		err := newResponder().Html(w, r, resp.Tmpls("tmpl/nope.tmpl"))

		// Assert
		require.NotNil(t, err)
		require.Contains(t, w.Body.String(), "Email us.")
	})
}

func TestResponderJson(t *testing.T) {
	// Arrange
	d := newResponder()
	r := withUser(httptest.NewRequest(http.MethodGet, "/api/me", nil))
	w := httptest.NewRecorder()

	// Act
	err := d.Json(w, r, resp.Data(map[string]string{"k": "v"}))

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, jsonMediaType, w.Header().Get("Content-Type"))

	actual := make(map[string]any)
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &actual))
	require.Equal(t, map[string]any{"k": "v"}, actual["data"])
	require.Equal(t, "husserl", actual["currentUser"].(map[string]any)["username"])

	// Arrange
	w = httptest.NewRecorder()

	// Act
	err = d.Json(w, r, resp.Code(http.StatusUnauthorized), resp.Data("nope"))

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"data":"nope"}`, w.Body.String())
}

func TestResponderRedirect(t *testing.T) {
	tcs := []struct {
		name     string
		opts     []resp.Fn
		code     int
		location string
	}{
		{"root", nil, http.StatusFound, "https://example.com"},
		{"url", []resp.Fn{resp.Url("/login")}, http.StatusFound, "/login"},
		{"param", []resp.Fn{resp.Url("/login"), resp.Param("from", "/dashboard")}, http.StatusFound, "/login?from=%2Fdashboard"},
		{"3xx", []resp.Fn{resp.Code(http.StatusSeeOther)}, http.StatusSeeOther, "https://example.com"},
		{"4xx", []resp.Fn{resp.Code(http.StatusUnauthorized)}, http.StatusSeeOther, "https://example.com"},
		{"5xx", []resp.Fn{resp.Code(http.StatusBadGateway)}, http.StatusTemporaryRedirect, "https://example.com"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			// Act
			err := newResponder().Redirect(w, r, tc.opts...)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}

	t.Run("bad-url", func(t *testing.T) {
		err := newResponder().Redirect(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), resp.Url("not a url"))
		require.ErrorIs(t, err, resp.ErrInvalid)
	})
}

func TestResponderErr(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	newResponder().Err(w, r, errors.New("boom"))

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "boom")
}

func TestFlashFns(t *testing.T) {
	// Arrange
	d := newResponder()
	s := session.NewStub()
	r := withSession(httptest.NewRequest(http.MethodGet, "/", nil), s)
	w := httptest.NewRecorder()

	// Act
	err := d.Redirect(w, r, resp.Url("/login"), resp.Warn(session.ExpiredMsg))

	// Assert
	require.Nil(t, err)
	require.Equal(t, []session.Flash{{Class: session.FlashWarning, Msg: session.ExpiredMsg}}, s.Flashes(w, r))

	// Act
	err = d.Redirect(w, r, resp.GenericErr(errors.New("boom")))

	// Assert
	require.Nil(t, err)
	require.Equal(t, []session.Flash{{Class: session.FlashError, Msg: "Email us."}}, s.Flashes(w, r))

	// Act
	err = d.Redirect(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), resp.Success("ok"))

	// Assert
	require.ErrorIs(t, err, resp.ErrNotFound)
}
