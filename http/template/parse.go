package template

import (
	"fmt"
	html "html/template"
	"io/fs"
	"os"
	"path"
	"sync"
)

// Parser is the interface for parsing HTML templates with the functions provided.
type Parser interface {
	AddFn(name string, fn any)
	Parse(fps ...string) (*html.Template, error)
}

// Parse implements Parser with a focus on utilizing embedded HTML templates through fs.FS.
type Parse struct {
	fs  fs.FS
	mu  sync.RWMutex
	fns html.FuncMap
}

// NewParser constructs a Parse with the provided functional options.
//
// Templates are looked up in the filesystem set by WithFS, or the working directory,
// and then among the defaults this package ships under tmpl/.
func NewParser(opts ...ParserOptFn) *Parse {
	p := &Parse{fns: make(html.FuncMap)}
	for _, opt := range opts {
		opt(p)
	}

	userFS := p.fs
	if userFS == nil {
		userFS = os.DirFS(".")
	}

	p.fs = &mergeFS{
		cache:   make(map[string]func(string) (fs.File, error)),
		userDir: userFS,
		pkgDir:  pkgFS,
	}

	return p
}

// AddFn includes the named function in the Parse function map.
//
// Functions must be added before the first template using them is parsed.
func (p *Parse) AddFn(name string, fn any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fns == nil {
		p.fns = make(html.FuncMap)
	}

	p.fns[name] = fn
}

// Parse parses files found in the *Parse.fs with those functions provided previously.
//
// The returned template is named after the base name of the first file.
func (p *Parse) Parse(fps ...string) (*html.Template, error) {
	files := make([]string, 0, len(fps))
	for _, fp := range fps {
		if fp != "" {
			files = append(files, fp)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w", ErrNoFiles)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return html.New(path.Base(files[0])).Funcs(p.fns).ParseFS(p.fs, files...)
}
