package token

import "sync"

// A Memory is a Store for a single process, safe for concurrent use.
type Memory struct {
	mu  sync.RWMutex
	tok string
}

// NewMemory constructs a Memory, holding tok if it is not empty.
func NewMemory(tok string) *Memory { return &Memory{tok: tok} }

func (m *Memory) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tok == "" {
		return "", ErrNoToken
	}

	return m.tok, nil
}

func (m *Memory) Set(tok string) error {
	m.mu.Lock()
	m.tok = tok
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.tok = ""
	m.mu.Unlock()
	return nil
}
