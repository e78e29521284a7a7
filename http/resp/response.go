package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/http/session"
	"github.com/xy-planning-network/gate/logger"
)

// A Fn is a functional option mutating the state of the *Response.
type Fn func(Responder, *Response) error

// Response is the internal state of one response being built.
type Response struct {
	w     http.ResponseWriter
	r     *http.Request
	code  int
	data  any
	tmpls []string
	url   *url.URL
	user  *gate.User
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// CurrentUser sets the user rendered alongside the response.
//
// Otherwise, the user found in the request context is used.
func CurrentUser(u *gate.User) Fn {
	return func(_ Responder, r *Response) error {
		r.user = u
		return nil
	}
}

// Data stores the provided value for writing to the client.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err logs e and sets the status code to 500.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			d.logger.Error(e.Error(), newLogContext(r.r, e, r.data))
		}

		r.code = http.StatusInternalServerError
		return nil
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Param adds the query parameter to the response's URL.
//
// Call after Url or ToRoot.
func Param(key, val string) Fn {
	return func(_ Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: Url() has not been called", ErrMissingData)
		}

		q := r.url.Query()
		q.Add(key, val)
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Success sets the status OK and sets a success flash in the session.
func Success(msg string) Fn {
	return func(d Responder, r *Response) error {
		r.code = http.StatusOK
		return Flash(session.Flash{Class: session.FlashSuccess, Msg: msg})(d, r)
	}
}

// Tmpls appends to the templates to be rendered.
func Tmpls(fps ...string) Fn {
	return func(_ Responder, r *Response) error {
		r.tmpls = append(r.tmpls, fps...)
		return nil
	}
}

// ToRoot sets the response's URL to the Responder's root URL.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// Url parses u and sets it as the response's URL.
func Url(u string) Fn {
	return func(_ Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}

		r.url = parsed
		return nil
	}
}

// Warn logs msg and sets it as a warning flash in the session.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		d.logger.Warn(msg, newLogContext(r.r, nil, r.data))
		return Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r)
	}
}

// newLogContext helps structure a logger.LogContext from the provided parts.
func newLogContext(r *http.Request, err error, data any) *logger.LogContext {
	ctx := &logger.LogContext{Caller: logger.CurrentCaller(), Error: err, Request: r}
	if mapped, ok := data.(map[string]any); ok {
		ctx.Data = mapped
	}

	if r != nil {
		if u, ok := r.Context().Value(gate.CurrentUserKey).(*gate.User); ok && u != nil {
			ctx.User = u
		}
	}

	return ctx
}
