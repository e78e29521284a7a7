package token

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/xy-planning-network/gate"
)

// StorageKey names where a Store persists the raw token string.
const StorageKey = "auth_token"

var (
	ErrNoToken    = errors.New("no token")
	ErrNotStored  = errors.New("not stored")
	ErrNotCleared = errors.New("not cleared")
)

// A Store persists at most one token per viewer.
type Store interface {
	// Get returns the token or ErrNoToken.
	Get() (string, error)

	// Set replaces any token with tok.
	Set(tok string) error

	// Clear removes the token.
	// Clearing an empty Store is not an error.
	Clear() error
}

// Ingest captures a non-empty token query parameter from u into s.
//
// On capture, the query string and fragment of u are removed and Ingest returns true.
// Otherwise, u and s are left untouched.
func Ingest(s Store, u *url.URL) (bool, error) {
	if u == nil {
		return false, nil
	}

	tok := u.Query().Get(gate.TokenParam)
	if tok == "" {
		return false, nil
	}

	if err := s.Set(tok); err != nil {
		return false, fmt.Errorf("%w: %s", ErrNotStored, err)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	return true, nil
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Store) context.Context {
	return context.WithValue(ctx, gate.TokenStoreKey, s)
}

// FromContext retrieves the Store placed in ctx by NewContext.
func FromContext(ctx context.Context) (Store, bool) {
	s, ok := ctx.Value(gate.TokenStoreKey).(Store)
	return s, ok
}
