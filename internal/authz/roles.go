package authz

import (
	"net/http"

	"jobauth/internal/domain"
	"jobauth/internal/httpx"
)

// RequireRole compares the Principal's role claim against an allow-list.
// Pure predicate, no I/O; must run after the session middleware.
func RequireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok || p.Role == "" {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized: no user role found")
				return
			}
			if _, ok := allowedSet[p.Role]; !ok {
				httpx.Error(w, http.StatusForbidden, "unauthorized: access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
