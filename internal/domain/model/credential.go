package model

import "time"

// TokenKey is the fixed durable-storage key under which the bearer token is kept.
const TokenKey = "bakelink-token"

// Credential is a stored key-value secret. Key identifies the entry
// ("bakelink-token"); Value is the plaintext at the domain boundary.
type Credential struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// LoginRequest is the body of the credential-issuing call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the decoded credential-issuing response. Token is empty when
// the backend answered 2xx without issuing a credential.
type LoginResult struct {
	Token string `json:"token"`
}
