package session

import (
	"net/http"
)

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	// Default Flash Msg
	DefaultErrMsg  = "Uh oh! We've run into an issue."
	ExpiredMsg     = "Your sign in has expired. Please sign in again."
	LoggedOutMsg   = "You have been signed out."
	NoAccessMsg    = "Please sign in to continue."
	UnreachableMsg = "We couldn't reach the sign in service. Please try again shortly."
)

type FlashSessionable interface {
	ClearFlashes(w http.ResponseWriter, r *http.Request)
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
