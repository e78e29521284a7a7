package main

import (
	"net/http"

	"github.com/xy-planning-network/gate"
	. "github.com/xy-planning-network/gate/http/resp"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/ranger"
	"github.com/xy-planning-network/gate/token"
)

const (
	// these refer to templates available for rendering
	dir       = "tmpl/"
	dashboard = dir + "dashboard.tmpl"
	home      = dir + "home.tmpl"
	login     = dir + "login.tmpl"

	loginServiceEnvVar = "LOGIN_SERVICE_URL"
)

// RangerHandler wraps a configured *Ranger.
// The methods attached to it are the handlers the Router
// will direct requests to.
type RangerHandler struct {
	*ranger.Ranger
}

// home greets anyone, naming the viewer when their token verifies.
//
// home is not guarded, so it asks the auth server itself
// and treats any failure as an anonymous viewer.
func (h *RangerHandler) home(w http.ResponseWriter, r *http.Request) {
	var u *gate.User
	if s, ok := token.FromContext(r.Context()); ok {
		u, _ = h.Auth.CurrentUser(r.Context(), s)
	}

	if err := h.Html(w, r, Tmpls(home), CurrentUser(u)); err != nil {
		h.EmitLogger().Debug("failed rendering home", &logger.LogContext{Error: err, Request: r})
	}
}

// login points the viewer at the login service.
func (h *RangerHandler) login(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"LoginServiceURL": gate.EnvVarOrString(loginServiceEnvVar, "")}
	if err := h.Html(w, r, Tmpls(login), Data(data)); err != nil {
		h.EmitLogger().Debug("failed rendering login", &logger.LogContext{Error: err, Request: r})
	}
}

// dashboard is the guarded view.
func (h *RangerHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, Tmpls(dashboard)); err != nil {
		h.EmitLogger().Debug("failed rendering dashboard", &logger.LogContext{Error: err, Request: r})
	}
}

// me reports the verified viewer to the single-page application.
func (h *RangerHandler) me(w http.ResponseWriter, r *http.Request) {
	if err := h.Json(w, r, Data(map[string]bool{"authenticated": true})); err != nil {
		h.Err(w, r, err)
	}
}
