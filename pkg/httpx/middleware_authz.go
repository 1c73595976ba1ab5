package httpx

import (
	"net/http"

	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
)

// RequireRole gates a route on the caller's role. The permitted set is
// declared at route registration and evaluated uniformly here: no Identity
// attached is 401 (the gate never substitutes a default role), a valid
// Identity outside the set is 403. Gates compose; the first failing gate
// short-circuits the pipeline.
func RequireRole(allowed ...jwtx.Role) Middleware {
	want := make(map[jwtx.Role]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeUnauthorized(w)
				return
			}
			if _, ok := want[id.Role]; !ok {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
