// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
	"github.com/ericfisherdev/bakelink/internal/domain/port/driven"
)

// ErrAuthenticationIncomplete is returned by Login when the backend accepted
// the credentials but issued no token.
var ErrAuthenticationIncomplete = errors.New("login succeeded but no token was issued")

// SessionStore owns the login/logout lifecycle: it publishes the current
// token to the Session and keeps it in durable storage.
type SessionStore struct {
	session *Session
	auth    driven.AuthAPI
	tokens  driven.TokenStore
	logger  *slog.Logger

	loginInFlight atomic.Bool
}

// NewSessionStore creates a SessionStore writing to session. A nil logger
// falls back to slog.Default().
func NewSessionStore(session *Session, auth driven.AuthAPI, tokens driven.TokenStore, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		session: session,
		auth:    auth,
		tokens:  tokens,
		logger:  logger,
	}
}

// Restore loads the persisted token into the session. It is called once at
// process start; a missing entry leaves the session unauthenticated.
func (s *SessionStore) Restore(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	s.session.set(token)
	if token != "" {
		s.logger.Debug("session restored")
	}
	return nil
}

// Login exchanges identity and secret for a token, persists it and makes it
// current. A call made while another login is in flight returns ("", nil)
// without contacting the backend. Backend failures are returned unwrapped.
func (s *SessionStore) Login(ctx context.Context, identity, secret string) (string, error) {
	if !s.loginInFlight.CompareAndSwap(false, true) {
		s.logger.Debug("login already in flight, ignoring")
		return "", nil
	}
	defer s.loginInFlight.Store(false)

	result, err := s.auth.Login(ctx, model.LoginRequest{Email: identity, Password: secret})
	if err != nil {
		return "", err
	}
	if result == nil || result.Token == "" {
		return "", ErrAuthenticationIncomplete
	}

	// Persist before publishing so a storage failure leaves the previous
	// session in place.
	if err := s.tokens.Save(ctx, result.Token); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	s.session.set(result.Token)

	s.logger.Info("logged in", "identity", identity)
	return result.Token, nil
}

// Logout clears the in-memory and persisted token. It always succeeds; a
// storage failure is logged and the in-memory session is cleared regardless.
func (s *SessionStore) Logout(ctx context.Context) {
	s.session.set("")
	if err := s.tokens.Delete(ctx); err != nil {
		s.logger.Error("failed to remove persisted token", "error", err)
	}
}

// CurrentToken returns the in-memory token.
func (s *SessionStore) CurrentToken() string {
	return s.session.Token()
}
