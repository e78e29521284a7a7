package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/logger"
	"github.com/xy-planning-network/gate/metrics"
	"github.com/xy-planning-network/gate/token"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 10 * time.Second
	VerifyPath     = "verify_jwt"

	maxBodyBytes = 1 << 20
)

// A Client verifies tokens against the auth server.
type Client struct {
	endpoint string
	hc       *http.Client
	log      logger.Logger
	timeout  time.Duration
	group    *singleflight.Group
}

// A ClientOpt configures a Client.
type ClientOpt func(*Client)

// WithCoalescing shares one round trip between concurrent verifications of the same token.
func WithCoalescing() ClientOpt {
	return func(c *Client) { c.group = new(singleflight.Group) }
}

// WithHTTPClient sets the *http.Client whose transport carries verification requests.
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger sets the Logger failed verifications are reported to.
func WithLogger(l logger.Logger) ClientOpt {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds a single round trip to the auth server.
func WithTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New constructs a Client calling the verification endpoint under baseURL.
func New(baseURL string, opts ...ClientOpt) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: auth server url %q: %s", gate.ErrBadConfig, baseURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: auth server url %q must be absolute", gate.ErrBadConfig, baseURL)
	}

	c := &Client{
		endpoint: u.JoinPath(VerifyPath).String(),
		hc:       http.DefaultClient,
		log:      logger.New(nil),
		timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Verify reports whether the token in s is accepted by the auth server.
//
// Without a token, Verify denies without a network call.
// A 401 or 403 clears s; no other failure does.
func (c *Client) Verify(ctx context.Context, s token.Store) Verification {
	start := time.Now()

	tok, err := s.Get()
	if err != nil {
		v := denied(ErrNoToken)
		if !errors.Is(err, token.ErrNoToken) {
			v = denied(fmt.Errorf("%w: reading token: %s", ErrTransient, err))
			c.log.Error("failed reading token", &logger.LogContext{Caller: logger.CurrentCaller(), Error: err})
		}

		metrics.Verifications.WithLabelValues(v.Outcome()).Inc()
		return v
	}

	v := c.fetch(ctx, tok)
	metrics.Verifications.WithLabelValues(v.Outcome()).Inc()
	metrics.VerifyDuration.WithLabelValues(v.Outcome()).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(v.Err, ErrInvalidToken):
		if err := s.Clear(); err != nil {
			c.log.Error("failed clearing rejected token", &logger.LogContext{Caller: logger.CurrentCaller(), Error: err})
		}

	case errors.Is(v.Err, ErrTransient), errors.Is(v.Err, ErrNotVerified):
		c.log.Warn("token verification failed", &logger.LogContext{
			Caller: logger.CurrentCaller(),
			Data:   map[string]any{"endpoint": c.endpoint},
			Error:  v.Err,
		})
	}

	return v
}

// CurrentUser fetches the user the token in s belongs to.
//
// Unlike Verify, CurrentUser never clears s.
func (c *Client) CurrentUser(ctx context.Context, s token.Store) (*gate.User, error) {
	tok, err := s.Get()
	switch {
	case errors.Is(err, token.ErrNoToken):
		return nil, ErrNoToken
	case err != nil:
		return nil, fmt.Errorf("%w: reading token: %w", ErrTransient, err)
	}

	v := c.fetch(ctx, tok)
	if v.Err != nil {
		return nil, v.Err
	}

	if v.User == nil {
		return nil, fmt.Errorf("%w: no user in response", ErrNotVerified)
	}

	return v.User, nil
}

// Logout clears s and sends the viewer to the root path.
func (c *Client) Logout(w http.ResponseWriter, r *http.Request, s token.Store) {
	if err := s.Clear(); err != nil {
		c.log.Error("failed clearing token on logout", &logger.LogContext{
			Caller:  logger.CurrentCaller(),
			Error:   err,
			Request: r,
		})
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// fetch runs check directly or through the singleflight group.
//
// A coalesced round trip is detached from any one caller's cancellation;
// every caller stops waiting when its own ctx is done.
func (c *Client) fetch(ctx context.Context, tok string) Verification {
	if c.group == nil {
		return c.check(ctx, tok)
	}

	ch := c.group.DoChan(tok, func() (any, error) {
		return c.check(context.WithoutCancel(ctx), tok), nil
	})

	select {
	case <-ctx.Done():
		return denied(fmt.Errorf("%w: %w", ErrTransient, ctx.Err()))
	case res := <-ch:
		if res.Shared {
			metrics.CoalescedVerifications.Inc()
		}

		return res.Val.(Verification)
	}
}

type verifyResponse struct {
	Success bool       `json:"success"`
	User    *gate.User `json:"user"`
}

// check makes one round trip to the auth server and classifies the response.
// check has no side effects.
func (c *Client) check(ctx context.Context, tok string) Verification {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, http.NoBody)
	if err != nil {
		return denied(fmt.Errorf("%w: %s", ErrTransient, err))
	}
	req.Header.Set("Accept", "application/json")

	hc := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.hc),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
	)
	// The token goes to the verification endpoint and nowhere else.
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	res, err := hc.Do(req)
	if err != nil {
		return denied(fmt.Errorf("%w: %w", ErrTransient, err))
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return denied(fmt.Errorf("%w: auth server responded %d", ErrInvalidToken, res.StatusCode))
	case res.StatusCode >= 300 && res.StatusCode < 400:
		return denied(fmt.Errorf("%w: auth server redirected %d to %q", ErrTransient, res.StatusCode, res.Header.Get("Location")))
	case res.StatusCode < 200, res.StatusCode > 299:
		return denied(fmt.Errorf("%w: auth server responded %d", ErrTransient, res.StatusCode))
	}

	var body verifyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(&body); err != nil {
		return denied(fmt.Errorf("%w: decoding response: %s", ErrTransient, err))
	}

	if !body.Success {
		return denied(ErrNotVerified)
	}

	return Verification{Authenticated: true, User: body.User}
}
