/*
gate serves a single-page application behind a token gate.

A login service hands a viewer back to any page with a "token" query parameter.
gate stores that token in the viewer's session, strips it from the address bar,
and verifies it against the auth server before rendering a guarded view.
*/
package main

import (
	"embed"
	"fmt"
	"net/http"
	"os"

	"github.com/xy-planning-network/gate/http/router"
	"github.com/xy-planning-network/gate/ranger"
)

//go:embed tmpl/*
var tmpls embed.FS

func main() {
	rng, err := ranger.New(ranger.WithFS(tmpls))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	routes(rng)

	if err := rng.Guide(); err != nil {
		rng.EmitLogger().Error(err.Error(), nil)
		os.Exit(1)
	}
}

// routes binds the views of the application to rng.
func routes(rng *ranger.Ranger) {
	h := &RangerHandler{Ranger: rng}

	rng.HandleRoutes([]router.Route{
		{Path: "/", Method: http.MethodGet, Name: "home", Handler: http.HandlerFunc(h.home)},
		{Path: "/login", Method: http.MethodGet, Name: "login", Handler: rng.Guard.Login(http.HandlerFunc(h.login))},
		{Path: "/logout", Method: http.MethodGet, Name: "logout", Handler: rng.Logout()},
	})

	rng.GuardedRoutes(rng.Guard, []router.Route{
		{Path: "/dashboard", Method: http.MethodGet, Name: "dashboard", Handler: http.HandlerFunc(h.dashboard)},
	})

	api := rng.Subrouter("/api")
	api.GuardedRoutes(rng.Guard, []router.Route{
		{Path: "/me", Method: http.MethodGet, Name: "me", Handler: http.HandlerFunc(h.me), Preflight: true},
	}, rng.CORS())
}
