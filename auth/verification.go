package auth

import (
	"errors"

	"github.com/xy-planning-network/gate"
)

const (
	OutcomeGranted      = "granted"
	OutcomeInvalidToken = "invalid_token"
	OutcomeNoToken      = "no_token"
	OutcomeNotVerified  = "not_verified"
	OutcomeTransient    = "transient"
)

// A Verification is the answer to whether a viewer is authenticated.
//
// User is only set when Authenticated is true.
// Err is nil when Authenticated is true and otherwise wraps one of
// ErrNoToken, ErrInvalidToken, ErrTransient or ErrNotVerified.
type Verification struct {
	Authenticated bool
	User          *gate.User
	Err           error
}

// Outcome names v for logs and metrics.
func (v Verification) Outcome() string {
	switch {
	case v.Authenticated:
		return OutcomeGranted
	case errors.Is(v.Err, ErrNoToken):
		return OutcomeNoToken
	case errors.Is(v.Err, ErrInvalidToken):
		return OutcomeInvalidToken
	case errors.Is(v.Err, ErrNotVerified):
		return OutcomeNotVerified
	default:
		return OutcomeTransient
	}
}

func denied(err error) Verification { return Verification{Err: err} }
