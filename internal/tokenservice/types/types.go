// Package types holds the Token Service's request/response DTOs, matching
// the literal JSON shapes spec.md §4.4.5-4.4.9 names.
package types

import "github.com/johnbasrai/identityplane/internal/tokenservice/jwtsign"

type MintRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type ValidateRequest struct {
	Token string `json:"token"`
}

type ValidateResponse struct {
	Valid  bool            `json:"valid"`
	Claims *jwtsign.Claims `json:"claims,omitempty"`
}

// ValidateErrorResponse is the failure shape spec.md §6 names for
// /auth/validate specifically: {valid:false, error}, distinct from the
// {error, message} shape the rest of the service's endpoints use.
type ValidateErrorResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RevokeRequest struct {
	Token string `json:"token"`
}

type RevokeResponse struct {
	Message string `json:"message"`
	Jti     string `json:"jti"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
