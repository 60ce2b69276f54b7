package application

import (
	"sync"

	"github.com/ericfisherdev/bakelink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenSource = (*Session)(nil)

// Session is the process's authentication context. It holds a mutex-protected
// bearer token that the request pipeline reads on every call, so a login or
// logout takes effect on the next request without rebuilding the pipeline.
// Only SessionStore writes it.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession creates an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
