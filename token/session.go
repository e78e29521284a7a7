package token

import (
	"fmt"
	"net/http"

	"github.com/xy-planning-network/gate/http/session"
)

// A SessionStore keeps the token in the viewer's session.
//
// Writes are saved immediately so the change rides on the response being built.
type SessionStore struct {
	w http.ResponseWriter
	r *http.Request
	s session.Sessionable
}

// NewSessionStore binds the session s for the request/response pair.
func NewSessionStore(w http.ResponseWriter, r *http.Request, s session.Sessionable) *SessionStore {
	return &SessionStore{w: w, r: r, s: s}
}

func (s *SessionStore) Get() (string, error) {
	tok, ok := s.s.Get(StorageKey).(string)
	if !ok || tok == "" {
		return "", ErrNoToken
	}

	return tok, nil
}

func (s *SessionStore) Set(tok string) error {
	if err := s.s.Set(s.w, s.r, StorageKey, tok); err != nil {
		return fmt.Errorf("%w: %s", ErrNotStored, err)
	}

	return nil
}

func (s *SessionStore) Clear() error {
	if err := s.s.Unset(s.w, s.r, StorageKey); err != nil {
		return fmt.Errorf("%w: %s", ErrNotCleared, err)
	}

	return nil
}
