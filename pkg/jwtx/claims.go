package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type claim values. A refresh token must never be accepted where an
// access token is required, and the other way around; every consumer checks
// TokenType explicitly.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default token lifetimes. Overridable per service via config.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the signed claim set carried by both access and refresh tokens.
// The two are structurally identical apart from TokenType and lifetime.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated principal.
	Username string `json:"username,omitempty"`

	// Email of the authenticated principal.
	Email string `json:"email,omitempty"`

	// Role is the derived effective role (student, tutor, tenant_admin,
	// system_admin).
	Role string `json:"role,omitempty"`

	// TenantID scopes the principal; empty for system administrators.
	TenantID string `json:"tenant_id,omitempty"`

	// PrincipalType distinguishes the two principal tables
	// ("tenant_user" or "system_admin").
	PrincipalType string `json:"principal_type,omitempty"`

	// TokenType is "access" or "refresh".
	TokenType string `json:"token_type,omitempty"`
}

// NewClaims builds a claim set for the given principal identity.
func NewClaims(
	subject, username, email string,
	role, tenantID, principalType string,
	tokenType string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username:      username,
		Email:         email,
		Role:          role,
		TenantID:      tenantID,
		PrincipalType: principalType,
		TokenType:     tokenType,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// IsAccess reports whether the claim set belongs to an access token.
func (c *Claims) IsAccess() bool { return c.TokenType == TokenTypeAccess }

// IsRefresh reports whether the claim set belongs to a refresh token.
func (c *Claims) IsRefresh() bool { return c.TokenType == TokenTypeRefresh }
