// Package session holds the dashboard's single current filter state.
package session

import (
	"sync"

	"salesdash/internal/core"
)

// Session guards one FilterSpec. Every change replaces the whole spec, so
// readers never observe a partially applied transition.
type Session struct {
	mu      sync.RWMutex
	spec    core.FilterSpec
	version uint64
}

// New starts from the default filter state.
func New() *Session {
	return &Session{spec: core.DefaultFilterSpec()}
}

// Current returns a copy of the current spec and its version. The version
// increases by one on every successful change.
func (s *Session) Current() (core.FilterSpec, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec.Clone(), s.version
}

// Apply runs a transition against the current spec and returns the
// committed spec with its version. On error the state is left untouched.
func (s *Session) Apply(a core.Action) (core.FilterSpec, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := core.Reduce(s.spec, a)
	if err != nil {
		return s.spec.Clone(), s.version, err
	}
	s.spec = next
	s.version++
	return next.Clone(), s.version, nil
}

// Replace installs spec wholesale after validating it.
func (s *Session) Replace(spec core.FilterSpec) (core.FilterSpec, uint64, error) {
	if err := spec.Validate(); err != nil {
		return core.FilterSpec{}, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec.Clone()
	s.version++
	return s.spec.Clone(), s.version, nil
}
