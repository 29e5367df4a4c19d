package models

import "github.com/golang-jwt/jwt/v5"

// TokenPair is the upstream auth response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// AccessClaims is the decoded (not verified) payload of the upstream access
// token. The upstream API is the authority; these claims only drive role
// gating and proactive refresh on this side.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest carries credentials forwarded to the upstream token endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the authenticated state carried per request.
type Session struct {
	AccessToken  string
	RefreshToken string
	Claims       *AccessClaims
}

// UserID returns the subject claim.
func (s *Session) UserID() string {
	if s == nil || s.Claims == nil {
		return ""
	}
	return s.Claims.Subject
}

// Role returns the role claim.
func (s *Session) Role() string {
	if s == nil || s.Claims == nil {
		return ""
	}
	return s.Claims.Role
}
