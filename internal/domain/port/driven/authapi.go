package driven

import (
	"context"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

// AuthAPI defines the driven port for the backend's credential-issuing endpoint.
type AuthAPI interface {
	// Login exchanges identity and secret for a token. A 2xx response without
	// a token yields a LoginResult with an empty Token, not an error.
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error)
}
