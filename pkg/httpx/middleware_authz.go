package httpx

import (
	"net/http"
)

// RequireAnyRole gates a handler on the role claim: the caller must hold one
// of the listed roles. This is a pure claim check against a fixed allow-list;
// no store access happens here, the claims were already verified by
// AuthnMiddleware.
func RequireAnyRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := want[roleFromContext(r.Context())]; !ok {
				Forbidden(allowed...).WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
