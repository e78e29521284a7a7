package resp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sync"

	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/http/template"
	"github.com/xy-planning-network/gate/logger"
)

// Responder maintains reusable pieces for responding to HTTP requests.
// It exposes many common methods for writing structured data as an HTTP response.
// These are the forms of response Responder can execute:
//
//	Html
//	Json
//	Redirect
//
// Most oftentimes, setting up a single instance of a Responder suffices for an application.
//
// When handling a specific HTTP request, calling code supplies additional data, structure,
// and so forth through Fn functions.
type Responder struct {
	logger logger.Logger

	// Initialized template parser
	parser template.Parser

	// Pool of *bytes.Buffer to prerender responses into
	pool *sync.Pool

	// Error message to use for "contact us" style client-side error messages,
	// i.e., those set in a session.Flash
	contactErrMsg string

	// Root URL the responder is listening on, also used when in an error state
	rootUrl *url.URL

	templates struct {
		// Root template to render when an error occurs
		// and no other response can be formed
		err string

		// Template wrapping every Html response
		layout string
	}
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	d := &Responder{
		pool:    &sync.Pool{New: func() any { return new(bytes.Buffer) }},
		rootUrl: &url.URL{Path: "/"},
	}
	d.templates.err = template.ErrorTmpl

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New(nil)
	}

	if d.parser != nil {
		d.parser.AddFn(template.Nonce())
		d.parser.AddFn(template.RootUrl(d.rootUrl))
	}

	return d
}

// CurrentUser retrieves the user set in the context.
//
// If the context.Context has no user, ErrNotFound returns.
func (doer Responder) CurrentUser(ctx context.Context) (*gate.User, error) {
	u, ok := ctx.Value(gate.CurrentUserKey).(*gate.User)
	if !ok || u == nil {
		return nil, fmt.Errorf("%w: no user found with %q", ErrNotFound, gate.CurrentUserKey)
	}

	return u, nil
}

// Err wraps http.Error(), logging the error causing the failure state.
//
// Use in exceptional circumstances when no Redirect or Html can occur.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	rr, nested := doer.do(w, r, append(opts, Err(err))...)
	if errors.Is(nested, ErrDone) {
		return
	}

	if nested != nil {
		err = fmt.Errorf("%w: %s", err, nested)
	}

	msg := http.StatusText(http.StatusInternalServerError)
	if err != nil {
		msg = err.Error()
	}

	code := http.StatusInternalServerError
	if rr != nil && rr.code != 0 {
		code = rr.code
	}

	http.Error(w, msg, code)
}

type htmlSchema struct {
	CurrentUser *gate.User
	Data        any
	Flashes     []session.Flash
}

// Html composes together HTML templates set in *Responder
// and configured by Tmpls and other such calls.
//
// When the request context is already done, Html writes nothing and returns ErrDone.
func (doer *Responder) Html(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if errors.Is(err, ErrDone) {
		return err
	}

	if err != nil {
		return doer.handleHtmlError(w, r, err)
	}

	if doer.parser == nil {
		return doer.handleHtmlError(w, r, fmt.Errorf("%w: no parser configured", ErrBadConfig))
	}

	if len(rr.tmpls) == 0 {
		return doer.handleHtmlError(w, r, fmt.Errorf("%w: no templates to render", ErrMissingData))
	}

	tmpls := rr.tmpls
	if doer.templates.layout != "" {
		tmpls = append([]string{doer.templates.layout}, tmpls...)
	}

	tmpl, err := doer.parser.Parse(tmpls...)
	if err != nil {
		return doer.handleHtmlError(w, r, fmt.Errorf("cannot parse: %w", err))
	}

	rd := htmlSchema{CurrentUser: rr.user, Data: rr.data}
	if rd.CurrentUser == nil {
		rd.CurrentUser, _ = doer.CurrentUser(r.Context())
	}

	if s, err := doer.Session(r.Context()); err == nil {
		rd.Flashes = s.Flashes(w, r)
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := tmpl.ExecuteTemplate(b, path.Base(tmpls[0]), rd); err != nil {
		return doer.handleHtmlError(w, r, err)
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

type jsonSchema struct {
	D any `json:"data,omitempty"`
	U any `json:"currentUser,omitempty"`
}

// Json responds with data in JSON format, collating it from CurrentUser(), Data() and setting appropriate headers.
//
// When standard 2xx codes are supplied, the JSON schema will look like this:
//
//	{
//		"currentUser": {},
//		"data": {}
//	}
//
// Otherwise, "currentUser" is elided.
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	payload := jsonSchema{D: rr.data}
	if rr.code >= http.StatusOK && rr.code <= http.StatusNoContent {
		if rr.user != nil {
			payload.U = rr.user
		} else if u, err := doer.CurrentUser(r.Context()); err == nil {
			payload.U = u
		}
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := json.NewEncoder(b).Encode(payload); err != nil {
		doer.Err(w, r, err)
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// Redirect calls http.Redirect, given Url() set the redirect destination.
// If Url() is not passed in opts, then ToRoot() sets the redirect destination.
//
// The default response status code is 302.
//
// If Code() set the status code to something other than standard redirect 3xx statuses,
// Redirect overwrites the status code with an appropriate 3xx status code.
func (doer *Responder) Redirect(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, append([]Fn{ToRoot()}, opts...)...)
	if err != nil {
		return err
	}

	if rr.url == nil {
		return fmt.Errorf("%w: cannot redirect, no resp.url", ErrMissingData)
	}

	switch {
	case rr.code >= http.StatusMultipleChoices && rr.code <= http.StatusPermanentRedirect:
	case rr.code >= http.StatusBadRequest && rr.code < http.StatusInternalServerError:
		rr.code = http.StatusSeeOther
	case rr.code >= http.StatusInternalServerError:
		rr.code = http.StatusTemporaryRedirect
	default:
		rr.code = http.StatusFound
	}

	http.Redirect(w, r, rr.url.String(), rr.code)
	return nil
}

// Session retrieves the session set in the context.
//
// If the context.Context has no session, ErrNotFound returns.
func (doer Responder) Session(ctx context.Context) (session.GateSessionable, error) {
	val := ctx.Value(gate.SessionKey)
	if val == nil {
		return nil, fmt.Errorf("%w: no session found with %q", ErrNotFound, gate.SessionKey)
	}

	s, ok := val.(session.GateSessionable)
	if !ok {
		return nil, fmt.Errorf("%w: is not session.GateSessionable, is %T", ErrInvalid, val)
	}

	return s, nil
}

// do applies all options to the passed in http.ResponseWriter and *http.Request.
//
// Calling code ought to pass Options in the correct order.
// An option requiring something set by another one should come after.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	resp := &Response{
		w:     w,
		r:     r,
		tmpls: make([]string, 0),
	}

	for _, opt := range opts {
		select {
		case <-r.Context().Done():
			return nil, fmt.Errorf("%w: %s", ErrDone, r.Context().Err())
		default:
		}

		if err := opt(*doer, resp); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// handleHtmlError renders the error template set on the Responder and reports err.
func (doer *Responder) handleHtmlError(w http.ResponseWriter, r *http.Request, err error) error {
	doer.logger.Error(err.Error(), &logger.LogContext{Caller: logger.CurrentCaller(), Error: err, Request: r})

	if doer.parser == nil || doer.templates.err == "" {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	tmpl, nested := doer.parser.Parse(doer.templates.err)
	if nested != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: %s", nested, err)
	}

	msg := session.DefaultErrMsg
	if doer.contactErrMsg != "" {
		msg = doer.contactErrMsg
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if nested = tmpl.Execute(b, map[string]any{"Contact": msg}); nested != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: %s", nested, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	b.WriteTo(w)

	return err
}
