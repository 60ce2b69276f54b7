package bakelink

import (
	"context"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
	"github.com/ericfisherdev/bakelink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuthAPI = (*AuthService)(nil)

// AuthService serves the credential-issuing and identity endpoints.
type AuthService struct {
	p *Pipeline
}

// Login posts the credentials without a bearer header. A 2xx body that is not
// a JSON object with a token yields an empty LoginResult.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	resp, err := s.p.Post(ctx, "/auth/login", req, WithoutAuth())
	if err != nil {
		return nil, err
	}

	var result model.LoginResult
	if err := resp.Decode(&result); err != nil {
		s.p.logger.Warn("login response carried no decodable token", "status", resp.StatusCode, "error", err)
		return &model.LoginResult{}, nil
	}
	return &result, nil
}

// Me returns the identity bound to the current token.
func (s *AuthService) Me(ctx context.Context) (*Response, error) {
	return s.p.Get(ctx, "/auth/me")
}
