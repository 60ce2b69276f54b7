package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore reads when the entry
// was written encrypted but BAKELINK_SECRET_KEY is not configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set BAKELINK_SECRET_KEY")

// CredentialStore defines the driven port for keyed credential persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the credential under key.
	Set(ctx context.Context, key, plaintext string) error

	// Get retrieves the plaintext credential for key.
	// Returns ("", nil) if no credential exists for that key.
	Get(ctx context.Context, key string) (string, error)

	// List returns all stored credentials with plaintext values.
	List(ctx context.Context) ([]model.Credential, error)

	// Delete removes the credential for key.
	Delete(ctx context.Context, key string) error
}
