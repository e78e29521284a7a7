package auth

import (
	"errors"

	"github.com/xy-planning-network/gate/token"
)

var (
	// ErrNoToken denies without contacting the auth server.
	ErrNoToken = token.ErrNoToken

	// ErrInvalidToken is a 401 or 403 from the auth server; the token is cleared.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTransient covers network failures, timeouts and unexpected responses; the token is kept.
	ErrTransient = errors.New("transient failure")

	// ErrNotVerified is a 2xx response reporting success as false; the token is kept.
	ErrNotVerified = errors.New("not verified")
)
