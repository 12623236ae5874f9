package httpx

import (
	"context"

	"github.com/studyhall-app/studyhall/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject  ctxKey = "subject"
	CtxKeyRole     ctxKey = "role"
	CtxKeyTenantID ctxKey = "tenant_id"
	CtxKeyClaims   ctxKey = "claims"
)

// ClaimsFromContext returns the verified access-token claims attached by
// AuthnMiddleware, or false when the request is unauthenticated.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// SubjectFromContext returns the authenticated principal id.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

func roleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}
