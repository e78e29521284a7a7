package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// mergeFS implements fs.FS
type mergeFS struct {
	// Remembers which directory holds a template.
	cache map[string]func(string) (fs.File, error)

	// Current working directory, or, embedded filesystem
	userDir fs.FS

	// Package-level directory embedding tmpl/
	pkgDir fs.FS

	mu sync.RWMutex
}

// Open opens the file matching the name, checking the cache, then userDir, then pkgDir.
//
// Whenever a file is found and is not present in the cache, it is added.
// Nothing removes references from the cache.
func (mfs *mergeFS) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	fn, ok := mfs.cache[name]
	mfs.mu.RUnlock()
	if ok {
		return fn(name)
	}

	file, err := mfs.userDir.Open(name)
	if err == nil {
		mfs.remember(name, mfs.userDir.Open)
		return file, nil
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		file, err = mfs.pkgDir.Open(name)
		if err != nil {
			return nil, fmt.Errorf("could not open template %s: %w", name, err)
		}

		mfs.remember(name, mfs.pkgDir.Open)
		return file, nil
	}

	return nil, fmt.Errorf("unable to open template: %w", err)
}

func (mfs *mergeFS) remember(name string, open func(string) (fs.File, error)) {
	mfs.mu.Lock()
	mfs.cache[name] = open
	mfs.mu.Unlock()
}

//go:embed tmpl/*
var pkgFS embed.FS

const (
	// ErrorTmpl is the default template rendered when a response cannot otherwise be formed.
	ErrorTmpl = "tmpl/error.tmpl"

	// LayoutTmpl is a bare HTML page rendering a "content" template and any flashes.
	// Templates rendered in it need the "env" function.
	LayoutTmpl = "tmpl/layout.tmpl"
)
