package ranger

import (
	"context"
	"io"
	"io/fs"
	"net/http"

	"github.com/xy-planning-network/gate/http/middleware"
)

// A RangerOption overrides one of the defaults New otherwise sets up from environment variables.
type RangerOption func(o *options)

type options struct {
	ctx         context.Context
	fsys        fs.FS
	hc          *http.Client
	logOut      io.Writer
	middlewares []middleware.Adapter
	srv         *http.Server
}

// WithContext sets the parent of the context.Context every request is handled under.
// Cancelling ctx stops Guide.
func WithContext(ctx context.Context) RangerOption {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithFS sets the filesystem HTML templates are read from before falling back to gate's own.
func WithFS(fsys fs.FS) RangerOption {
	return func(o *options) { o.fsys = fsys }
}

// WithHTTPClient sets the *http.Client calls to the auth server are made with.
func WithHTTPClient(hc *http.Client) RangerOption {
	return func(o *options) { o.hc = hc }
}

// WithLogOutput sets where application and HTTP logs are written. The default is os.Stdout.
func WithLogOutput(w io.Writer) RangerOption {
	return func(o *options) {
		if w != nil {
			o.logOut = w
		}
	}
}

// WithMiddlewares appends mws to the default set applied to every request.
func WithMiddlewares(mws ...middleware.Adapter) RangerOption {
	return func(o *options) { o.middlewares = append(o.middlewares, mws...) }
}

// WithServer replaces the default *http.Server.
// The server's Handler is always set to the Ranger.
func WithServer(srv *http.Server) RangerOption {
	return func(o *options) { o.srv = srv }
}
