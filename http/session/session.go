package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
	Unset(w http.ResponseWriter, r *http.Request, key string) error
}

// The GateSessionable composes session's major interfaces.
type GateSessionable interface {
	FlashSessionable
	Sessionable
}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session from a *gorilla.Session.
func NewSession(g *gorilla.Session) Session { return Session{s: g} }

// ClearFlashes drops every Flash in the session.
func (s Session) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	_ = s.Flashes(w, r)
}

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0, len(raw))
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}

	if len(raw) > 0 {
		// NOTE: Flashes are removed after they are accessed,
		// but the session needs to be saved for them to be finally removed
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// Unset removes the value stored under key, saving the session
// whether or not a value was present.
func (s Session) Unset(w http.ResponseWriter, r *http.Request, key string) error {
	delete(s.s.Values, key)
	return s.Save(w, r)
}

var _ GateSessionable = Stub{}

// A Stub is a GateSessionable holding values in memory and never writing to a response.
type Stub struct {
	Values  map[string]any
	flashes *[]Flash
}

// NewStub constructs a ready to use Stub.
func NewStub() Stub {
	return Stub{Values: make(map[string]any), flashes: new([]Flash)}
}

func (s Stub) ClearFlashes(w http.ResponseWriter, r *http.Request) { *s.flashes = nil }
func (s Stub) Delete(w http.ResponseWriter, r *http.Request) error {
	for k := range s.Values {
		delete(s.Values, k)
	}

	return nil
}
func (s Stub) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	fs := *s.flashes
	*s.flashes = nil
	return fs
}
func (s Stub) Get(key string) any                                { return s.Values[key] }
func (s Stub) Save(w http.ResponseWriter, r *http.Request) error { return nil }
func (s Stub) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.Values[key] = val
	return nil
}
func (s Stub) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	*s.flashes = append(*s.flashes, flash)
	return nil
}
func (s Stub) Unset(w http.ResponseWriter, r *http.Request, key string) error {
	delete(s.Values, key)
	return nil
}
