package pipeline

import (
	"context"
	"errors"
	"sync"
)

// Latest holds the most recently built climatology. The window endpoint
// reads from it, and readiness flips once the first build lands.
type Latest struct {
	mu     sync.RWMutex
	result *Result
}

// Set stores a build result.
func (l *Latest) Set(r *Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.result = r
}

// Get returns the stored result, or false if nothing has been built yet.
func (l *Latest) Get() (*Result, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result, l.result != nil
}

// CheckReadiness returns nil once at least one climatology has been built.
func (l *Latest) CheckReadiness(_ context.Context) error {
	if _, ok := l.Get(); !ok {
		return errors.New("no climatology built yet")
	}
	return nil
}
