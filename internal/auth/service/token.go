package service

import (
	"context"
	"errors"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/pkg/jwtx"
)

var ErrInvalidRefresh = errors.New("invalid_refresh_token")

// TokenService mints and exchanges the stateless token pair. Nothing is
// persisted; refresh exchange is pure claim verification plus a re-issue.
type TokenService struct {
	Codec      *jwtx.HS256
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is the clock used when stamping claims. Defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssuePair mints an access and refresh token for an authenticated
// principal. Both carry the same identity claims; only token_type and
// lifetime differ.
func (s *TokenService) IssuePair(pc domain.PrincipalContext) (domain.TokenPair, error) {
	now := s.now()

	access, err := s.Codec.Sign(s.claimsFor(pc, jwtx.TokenTypeAccess, s.AccessTTL, now))
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.Sign(s.claimsFor(pc, jwtx.TokenTypeRefresh, s.RefreshTTL, now))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. Access
// tokens are rejected here; refresh tokens are never accepted as access
// tokens by the authn middleware, so the two lifetimes stay disjoint.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Codec.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if !claims.IsRefresh() {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	access, err := s.Codec.Sign(jwtx.NewClaims(
		claims.Subject, claims.Username, claims.Email,
		claims.Role, claims.TenantID, claims.PrincipalType,
		jwtx.TokenTypeAccess, s.AccessTTL, s.Issuer, s.now(),
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.AccessTTL.Seconds()),
	}, nil
}

func (s *TokenService) claimsFor(
	pc domain.PrincipalContext,
	tokenType string,
	ttl time.Duration,
	now time.Time,
) jwtx.Claims {
	return jwtx.NewClaims(
		pc.ID, pc.Username, pc.Email,
		string(pc.Role), pc.TenantID, string(pc.Type),
		tokenType, ttl, s.Issuer, now,
	)
}
