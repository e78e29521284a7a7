package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/auth"
	"github.com/xy-planning-network/gate/token"
)

const granted = `{"success":true,"user":{"telegram_id":42,"username":"husserl","is_premium":true}}`

type authServer struct {
	*httptest.Server
	calls  atomic.Int32
	status int
	body   string
	wait   chan struct{}

	mu       sync.Mutex
	lastReq  *http.Request
	lastBody []byte
}

func newAuthServer(t *testing.T, status int, body string) *authServer {
	t.Helper()

	s := &authServer{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)

		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.lastReq = r
		s.lastBody = b
		s.mu.Unlock()

		if s.wait != nil {
			select {
			case <-s.wait:
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		w.Write([]byte(s.body))
	}))
	t.Cleanup(s.Close)

	return s
}

func newClient(t *testing.T, url string, opts ...auth.ClientOpt) *auth.Client {
	t.Helper()

	c, err := auth.New(url, opts...)
	require.Nil(t, err)

	return c
}

func TestNew(t *testing.T) {
	for _, raw := range []string{"", "localhost:5002", "/verify", "ftp://example.com", "http://%zz"} {
		_, err := auth.New(raw)
		require.ErrorIs(t, err, gate.ErrBadConfig, raw)
	}

	c, err := auth.New("http://localhost:5002/")
	require.Nil(t, err)
	require.NotNil(t, c)
}

func TestVerifyNoToken(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusOK, granted)
	c := newClient(t, srv.URL)

	// Act
	v := c.Verify(context.Background(), token.NewMemory(""))

	// Assert
	require.False(t, v.Authenticated)
	require.Nil(t, v.User)
	require.ErrorIs(t, v.Err, auth.ErrNoToken)
	require.Equal(t, auth.OutcomeNoToken, v.Outcome())
	require.Zero(t, srv.calls.Load())
}

func TestVerifyGranted(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusOK, granted)
	c := newClient(t, srv.URL+"/")
	s := token.NewMemory("abc")

	// Act
	v := c.Verify(context.Background(), s)

	// Assert
	require.True(t, v.Authenticated)
	require.Nil(t, v.Err)
	require.Equal(t, &gate.User{TelegramID: 42, Username: "husserl", IsPremium: true}, v.User)
	require.Equal(t, auth.OutcomeGranted, v.Outcome())
	require.EqualValues(t, 1, srv.calls.Load())

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Equal(t, http.MethodPost, srv.lastReq.Method)
	require.Equal(t, "/verify_jwt", srv.lastReq.URL.Path)
	require.Equal(t, "Bearer abc", srv.lastReq.Header.Get("Authorization"))
	require.Empty(t, srv.lastBody)

	tok, err := s.Get()
	require.Nil(t, err)
	require.Equal(t, "abc", tok)
}

func TestVerifyDenied(t *testing.T) {
	tcs := []struct {
		name    string
		status  int
		body    string
		err     error
		outcome string
		kept    bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"Token expired"}`, auth.ErrInvalidToken, auth.OutcomeInvalidToken, false},
		{"forbidden", http.StatusForbidden, `{"error":"User is not premium"}`, auth.ErrInvalidToken, auth.OutcomeInvalidToken, false},
		{"server-error", http.StatusInternalServerError, `{"error":"Server error"}`, auth.ErrTransient, auth.OutcomeTransient, true},
		{"bad-gateway", http.StatusBadGateway, ``, auth.ErrTransient, auth.OutcomeTransient, true},
		{"not-found", http.StatusNotFound, ``, auth.ErrTransient, auth.OutcomeTransient, true},
		{"not-success", http.StatusOK, `{"success":false}`, auth.ErrNotVerified, auth.OutcomeNotVerified, true},
		{"malformed", http.StatusOK, `<html>`, auth.ErrTransient, auth.OutcomeTransient, true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			srv := newAuthServer(t, tc.status, tc.body)
			c := newClient(t, srv.URL)
			s := token.NewMemory("abc")

			// Act
			v := c.Verify(context.Background(), s)

			// Assert
			require.False(t, v.Authenticated)
			require.Nil(t, v.User)
			require.ErrorIs(t, v.Err, tc.err)
			require.Equal(t, tc.outcome, v.Outcome())

			_, err := s.Get()
			if tc.kept {
				require.Nil(t, err)
			} else {
				require.ErrorIs(t, err, token.ErrNoToken)
			}
		})
	}
}

func TestVerifyUnreachable(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url)
	s := token.NewMemory("abc")

	// Act
	v := c.Verify(context.Background(), s)

	// Assert
	require.ErrorIs(t, v.Err, auth.ErrTransient)
	_, err := s.Get()
	require.Nil(t, err)
}

func TestVerifyRedirectNotFollowed(t *testing.T) {
	// Arrange
	elsewhere := newAuthServer(t, http.StatusOK, granted)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, elsewhere.URL+"/verify_jwt", http.StatusTemporaryRedirect)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	s := token.NewMemory("abc")

	// Act
	v := c.Verify(context.Background(), s)

	// Assert
	require.False(t, v.Authenticated)
	require.ErrorIs(t, v.Err, auth.ErrTransient)
	require.Equal(t, auth.OutcomeTransient, v.Outcome())
	require.Zero(t, elsewhere.calls.Load())

	tok, err := s.Get()
	require.Nil(t, err)
	require.Equal(t, "abc", tok)
}

func TestVerifyTimeout(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusOK, granted)
	srv.wait = make(chan struct{})
	defer close(srv.wait)

	c := newClient(t, srv.URL, auth.WithTimeout(20*time.Millisecond))
	s := token.NewMemory("abc")

	// Act
	v := c.Verify(context.Background(), s)

	// Assert
	require.ErrorIs(t, v.Err, auth.ErrTransient)
	_, err := s.Get()
	require.Nil(t, err)
}

func TestVerifyCoalescing(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusOK, granted)
	srv.wait = make(chan struct{})
	c := newClient(t, srv.URL, auth.WithCoalescing())

	n := 5
	results := make([]auth.Verification, n)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Verify(context.Background(), token.NewMemory("abc"))
		}(i)
	}

	require.Eventually(t, func() bool { return srv.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(srv.wait)
	wg.Wait()

	// Assert
	require.EqualValues(t, 1, srv.calls.Load())
	for _, v := range results {
		require.True(t, v.Authenticated)
	}
}

func TestVerifyCoalescedCallerCancels(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusUnauthorized, ``)
	srv.wait = make(chan struct{})
	c := newClient(t, srv.URL, auth.WithCoalescing())

	stay := token.NewMemory("abc")
	leave := token.NewMemory("abc")
	ctx, cancel := context.WithCancel(context.Background())

	stayed := make(chan auth.Verification)
	go func() { stayed <- c.Verify(context.Background(), stay) }()
	require.Eventually(t, func() bool { return srv.calls.Load() == 1 }, time.Second, time.Millisecond)

	left := make(chan auth.Verification)
	go func() { left <- c.Verify(ctx, leave) }()

	// Act
	cancel()
	lv := <-left
	close(srv.wait)
	sv := <-stayed

	// Assert
	require.ErrorIs(t, lv.Err, auth.ErrTransient)
	require.ErrorIs(t, lv.Err, context.Canceled)
	_, err := leave.Get()
	require.Nil(t, err)

	require.ErrorIs(t, sv.Err, auth.ErrInvalidToken)
	_, err = stay.Get()
	require.ErrorIs(t, err, token.ErrNoToken)
}

type brokenStore struct{}

func (brokenStore) Get() (string, error) { return "", errors.New("session decode") }
func (brokenStore) Set(string) error     { return nil }
func (brokenStore) Clear() error         { return nil }

func TestVerifyStoreFails(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusOK, granted)
	c := newClient(t, srv.URL)

	// Act
	v := c.Verify(context.Background(), brokenStore{})

	// Assert
	require.ErrorIs(t, v.Err, auth.ErrTransient)
	require.Zero(t, srv.calls.Load())

	// Act
	u, err := c.CurrentUser(context.Background(), brokenStore{})

	// Assert
	require.Nil(t, u)
	require.ErrorIs(t, err, auth.ErrTransient)
	require.NotErrorIs(t, err, auth.ErrNoToken)
	require.Zero(t, srv.calls.Load())
}

func TestCurrentUser(t *testing.T) {
	// Arrange
	srv := newAuthServer(t, http.StatusOK, granted)
	c := newClient(t, srv.URL)

	// Act
	u, err := c.CurrentUser(context.Background(), token.NewMemory("abc"))

	// Assert
	require.Nil(t, err)
	require.Equal(t, "husserl", u.GetUsername())

	// Act
	u, err = c.CurrentUser(context.Background(), token.NewMemory(""))

	// Assert
	require.ErrorIs(t, err, auth.ErrNoToken)
	require.Nil(t, u)

	// Arrange
	srv.status = http.StatusUnauthorized
	s := token.NewMemory("abc")

	// Act
	u, err = c.CurrentUser(context.Background(), s)

	// Assert
	require.ErrorIs(t, err, auth.ErrInvalidToken)
	require.Nil(t, u)
	tok, err := s.Get()
	require.Nil(t, err)
	require.Equal(t, "abc", tok)
}

func TestLogout(t *testing.T) {
	// Arrange
	c := newClient(t, "http://localhost:5002")
	s := token.NewMemory("abc")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/logout", nil)

	// Act
	c.Logout(w, r, s)

	// Assert
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
	_, err := s.Get()
	require.ErrorIs(t, err, token.ErrNoToken)

	// Act
	w = httptest.NewRecorder()
	c.Logout(w, r, s)

	// Assert
	require.Equal(t, http.StatusFound, w.Code)
}
