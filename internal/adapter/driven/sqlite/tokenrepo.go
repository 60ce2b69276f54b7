package sqlite

import (
	"context"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
	"github.com/ericfisherdev/bakelink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo persists the bearer token as the model.TokenKey credential.
type TokenRepo struct {
	creds driven.CredentialStore
}

// NewTokenRepo binds a TokenRepo to the given credential store.
func NewTokenRepo(creds driven.CredentialStore) *TokenRepo {
	return &TokenRepo{creds: creds}
}

// Load returns the stored token, or ("", nil) when none is stored.
func (r *TokenRepo) Load(ctx context.Context) (string, error) {
	return r.creds.Get(ctx, model.TokenKey)
}

// Save stores or replaces the token.
func (r *TokenRepo) Save(ctx context.Context, token string) error {
	return r.creds.Set(ctx, model.TokenKey, token)
}

// Delete removes the stored token.
func (r *TokenRepo) Delete(ctx context.Context) error {
	return r.creds.Delete(ctx, model.TokenKey)
}
