package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/studyhall-app/studyhall/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *jwtx.HS256 {
	t.Helper()
	return jwtx.NewHS256([]byte("unit-test-secret-material-123456"), "test-issuer")
}

func signToken(t *testing.T, codec *jwtx.HS256, role, tokenType string, ttl time.Duration) string {
	t.Helper()
	token, err := codec.Sign(jwtx.NewClaims(
		"user-1", "alice", "alice@example.com",
		role, "tenant-1", "tenant_user",
		tokenType, ttl, "test-issuer", time.Now(),
	))
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	var gotSubject, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = SubjectFromContext(r.Context())
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		gotRole = claims.Role
		w.WriteHeader(http.StatusOK)
	})
	handler := Chain(inner, AuthnMiddleware(codec))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, codec, "student", jwtx.TokenTypeRefresh, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid access token passes claims through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, codec, "tutor", jwtx.TokenTypeAccess, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", gotSubject)
		require.Equal(t, "tutor", gotRole)
	})
}

func TestRequireAnyRole(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	handler := Chain(okHandler(),
		AuthnMiddleware(codec),
		RequireAnyRole("tenant_admin", "system_admin"),
	)

	cases := []struct {
		role string
		want int
	}{
		{"system_admin", http.StatusOK},
		{"tenant_admin", http.StatusOK},
		{"tutor", http.StatusForbidden},
		{"student", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, codec, tc.role, jwtx.TokenTypeAccess, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, "role %s", tc.role)
	}
}

func TestRequireAnyRoleWithoutAuthn(t *testing.T) {
	t.Parallel()

	// No claims in context reads as no role, which is forbidden.
	handler := Chain(okHandler(), RequireAnyRole("system_admin"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	limit := RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	handler := Chain(okHandler(), RateLimitByIP(limit))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := range 3 {
		require.Equal(t, http.StatusOK, send("198.51.100.7"), "request %d", i)
	}
	require.Equal(t, http.StatusTooManyRequests, send("198.51.100.7"))

	// Another client is unaffected.
	require.Equal(t, http.StatusOK, send("198.51.100.8"))
}

func TestParseBearer(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", ParseBearer("Bearer abc"))
	require.Equal(t, "abc", ParseBearer("bearer abc"))
	require.Empty(t, ParseBearer(""))
	require.Empty(t, ParseBearer("Basic abc"))
	require.Empty(t, ParseBearer("Bearer"))
}
