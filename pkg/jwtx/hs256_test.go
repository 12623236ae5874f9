package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCodec(now time.Time) *HS256 {
	codec := NewHS256([]byte("test-secret-32-bytes-long-enough"), "test-issuer")
	codec.Now = func() time.Time { return now }
	return codec
}

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(now)

	claims := NewClaims(
		"user-1", "alice", "alice@example.com",
		"tutor", "tenant-1", "tenant_user",
		TokenTypeAccess, 15*time.Minute, "test-issuer", now,
	)

	token, err := codec.Sign(claims)
	require.NoError(t, err)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "alice@example.com", got.Email)
	require.Equal(t, "tutor", got.Role)
	require.Equal(t, "tenant-1", got.TenantID)
	require.Equal(t, "tenant_user", got.PrincipalType)
	require.True(t, got.IsAccess())
	require.False(t, got.IsRefresh())
	require.NotEmpty(t, got.ID, "jti should be set")
}

func TestHS256Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(now)

	claims := NewClaims(
		"user-1", "alice", "alice@example.com",
		"student", "tenant-1", "tenant_user",
		TokenTypeAccess, 15*time.Minute, "test-issuer", now,
	)
	token, err := codec.Sign(claims)
	require.NoError(t, err)

	t.Run("valid before expiry", func(t *testing.T) {
		codec.Now = func() time.Time { return now.Add(14 * time.Minute) }
		_, err := codec.Verify(token)
		require.NoError(t, err)
	})

	t.Run("expired after ttl", func(t *testing.T) {
		codec.Now = func() time.Time { return now.Add(16 * time.Minute) }
		_, err := codec.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestHS256RejectsTampering(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(now)

	claims := NewClaims(
		"user-1", "alice", "alice@example.com",
		"student", "tenant-1", "tenant_user",
		TokenTypeAccess, 15*time.Minute, "test-issuer", now,
	)
	token, err := codec.Sign(claims)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewHS256([]byte("a-completely-different-secret!!!"), "test-issuer")
		other.Now = func() time.Time { return now }
		_, err := other.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Verify("not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := codec.Verify("")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		other := NewHS256([]byte("test-secret-32-bytes-long-enough"), "other-issuer")
		other.Now = func() time.Time { return now }
		_, err := other.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})
}

func TestTokenTypes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(now)

	refresh := NewClaims(
		"user-1", "alice", "alice@example.com",
		"student", "tenant-1", "tenant_user",
		TokenTypeRefresh, DefaultRefreshTokenTTL, "test-issuer", now,
	)
	token, err := codec.Sign(refresh)
	require.NoError(t, err)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	require.True(t, got.IsRefresh())
	require.False(t, got.IsAccess())
}

func TestNewJTIUnique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 100 {
		jti := NewJTI()
		require.NotEmpty(t, jti)
		require.False(t, seen[jti])
		seen[jti] = true
	}
}
