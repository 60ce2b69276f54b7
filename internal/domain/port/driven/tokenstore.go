package driven

import "context"

// TokenStore defines the driven port for durable bearer-token persistence.
// Exactly one token is stored per installation.
type TokenStore interface {
	// Load returns the stored token, or ("", nil) when none is stored.
	Load(ctx context.Context) (string, error)

	// Save stores or replaces the token.
	Save(ctx context.Context, token string) error

	// Delete removes the stored token. Deleting an absent token is not an error.
	Delete(ctx context.Context) error
}

// TokenSource yields the bearer token to attach to the next outbound request.
// An empty string means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}
