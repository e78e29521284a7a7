package session

import (
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/boj/redistore"
	gorilla "github.com/gorilla/sessions"
	"github.com/xy-planning-network/gate"
)

const (
	defaultMaxAge = 86400 // 1 day
	redisPoolSize = 10
)

// The SessionStorer defines methods for interacting with a Sessionable for the given *http.Request.
type SessionStorer interface {
	GetSession(r *http.Request) (Session, error)
}

// A Service wraps a gorilla.Store to manage constructing a new one
// and accessing the sessions contained in it.
//
// Service implements SessionStorer.
type Service struct {
	ak     []byte
	ek     []byte
	sn     string
	env    gate.Environment
	maxAge int
	store  gorilla.Store
}

// A Config provides the required values
type Config struct {
	Env gate.Environment

	// The name sessions are stored under.
	// Also used as the name of the cookie when WithCookie is used.
	SessionName string

	// Hex-encoded key
	AuthKey string

	// Hex-encoded key
	EncryptKey string
}

func (c Config) valid() error {
	if err := c.Env.Valid(); err != nil {
		return err
	}

	if c.SessionName == "" {
		return fmt.Errorf("%w: SessionName cannot be %q", gate.ErrBadConfig, c.SessionName)
	}

	return nil
}

// NewStoreService initiates a data store for user web sessions
// with the provided config.
// If no backing storage is provided through a functional option,
// like WithRedis, NewStoreService stores sessions in cookies.
func NewStoreService(cfg Config, opts ...ServiceOpt) (Service, error) {
	if err := cfg.valid(); err != nil {
		return Service{}, err
	}

	gob.Register(Flash{})

	var err error
	s := Service{
		env:    cfg.Env,
		maxAge: defaultMaxAge,
		sn:     cfg.SessionName,
	}

	s.ak, err = hex.DecodeString(cfg.AuthKey)
	if err != nil {
		return Service{}, fmt.Errorf("%w: authentication key is not valid: %s", gate.ErrBadConfig, err)
	}

	s.ek, err = hex.DecodeString(cfg.EncryptKey)
	if err != nil {
		return Service{}, fmt.Errorf("%w: encryption key is not valid: %s", gate.ErrBadConfig, err)
	}

	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return Service{}, fmt.Errorf("%w: %w", gate.ErrBadConfig, err)
		}
	}

	if s.store == nil {
		_ = WithCookie()(&s)
	}

	return s, nil
}

// GetSession retrieves the Session for the *http.Request,
// or creates a brand new one.
//
// A session that fails to decode, e.g. after rotating keys, is replaced by a fresh one
// alongside the error.
func (s Service) GetSession(r *http.Request) (Session, error) {
	session, err := s.store.Get(r, s.sn)
	return Session{s: session}, err
}

// A ServiceOpt configures the provided *Service,
// returning an error if unable to.
type ServiceOpt func(*Service) error

// WithCookie configures the Service to back session storage with cookies.
func WithCookie() ServiceOpt {
	return func(s *Service) error {
		var c *gorilla.CookieStore
		if s.env.IsTesting() {
			c = gorilla.NewCookieStore(s.ak)
		} else {
			c = gorilla.NewCookieStore(s.ak, s.ek)
		}

		c.Options.Secure = !s.env.IsLocal()
		c.Options.HttpOnly = true
		c.Options.SameSite = http.SameSiteLaxMode
		c.MaxAge(s.maxAge)
		s.store = c
		return nil
	}
}

// WithMaxAge sets the time-to-live of a session.
//
// Call before other options so this value is available.
//
// Otherwise, the Service uses defaultMaxAge.
func WithMaxAge(secs int) ServiceOpt {
	return func(s *Service) error {
		if secs <= 0 {
			return fmt.Errorf("%w: max age must be positive, got %d", ErrNotValid, secs)
		}

		s.maxAge = secs
		return nil
	}
}

// WithRedis configures the Service to back session storage with Redis.
//
// To authenticate to the Redis server, provide pass, otherwise its zero-value is acceptable.
func WithRedis(addr, pass string) ServiceOpt {
	return func(s *Service) error {
		r, err := redistore.NewRediStore(redisPoolSize, "tcp", addr, pass, s.ak, s.ek)
		if err != nil {
			return fmt.Errorf("failed initializing Redis: %w", err)
		}

		r.Options.Secure = !s.env.IsLocal()
		r.Options.HttpOnly = true
		r.Options.SameSite = http.SameSiteLaxMode
		r.SetMaxAge(s.maxAge)
		s.store = r
		return nil
	}
}

// A StubStore is a gorilla.Store always handing back the same session
// and never persisting it anywhere.
type StubStore struct {
	s *gorilla.Session
}

// NewStubStore constructs a StubStore whose session holds tok under key, when tok is not empty.
func NewStubStore(key, tok string) *StubStore {
	s := new(StubStore)
	s.s = gorilla.NewSession(s, "stub")
	s.s.Options = &gorilla.Options{Path: "/"}
	if tok != "" {
		s.s.Values[key] = tok
	}

	return s
}

func (s *StubStore) GetSession(r *http.Request) (Session, error) { return Session{s.s}, nil }

func (s *StubStore) Get(r *http.Request, name string) (*gorilla.Session, error) { return s.s, nil }
func (s *StubStore) New(r *http.Request, name string) (*gorilla.Session, error) { return s.s, nil }
func (s *StubStore) Save(r *http.Request, w http.ResponseWriter, sess *gorilla.Session) error {
	return nil
}
