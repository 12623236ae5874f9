package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
	ErrTokenType  = errors.New("jwtx: unexpected token type")
)

// Signer signs claim sets into compact JWTs.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a compact JWT and returns its claims if legitimate.
// Any error means the caller must treat the request as unauthenticated;
// claims from a failed Verify are never partially trusted.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 signs and verifies tokens with a single symmetric secret.
// It implements both Signer and Verifier.
type HS256 struct {
	secret []byte
	issuer string

	// Now is the clock used for expiry validation. Defaults to time.Now;
	// tests inject a fixed clock.
	Now func() time.Time
}

// NewHS256 builds an HMAC-SHA256 token codec from the shared signing secret.
func NewHS256(secret []byte, issuer string) *HS256 {
	return &HS256{secret: secret, issuer: issuer, Now: time.Now}
}

// Sign turns claims into a signed compact JWT.
func (h *HS256) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify parses and validates the token. Signature, expiry, not-before and
// issuer are all enforced; failures collapse into the sentinel errors above.
func (h *HS256) Verify(token string) (Claims, error) {
	now := h.Now
	if now == nil {
		now = time.Now
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now() }),
		jwt.WithIssuedAt(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}
