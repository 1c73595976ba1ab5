package httpx

import (
	"net/http"
	"strings"

	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

// TokenVerifier validates a bearer token and returns the embedded Identity.
type TokenVerifier interface {
	Verify(token string) (jwtx.Identity, error)
}

// AuthnMiddleware extracts and verifies the Authorization bearer token and
// attaches the resulting Identity to the request context. Every failure
// mode (missing header, malformed token, bad signature, expiry, unknown
// role) collapses to the same 401 so the response does not leak which
// check failed.
func AuthnMiddleware(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeUnauthorized(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			id, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// AuthnOptional attaches an Identity when the request carries a valid
// bearer token and lets anonymous requests through untouched. A token
// that is present but fails verification is still a 401: ignoring bad
// credentials would mask broken clients.
func AuthnOptional(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authz, "Bearer ") {
				writeUnauthorized(w)
				return
			}

			id, err := v.Verify(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer")))
			if err != nil {
				slogx.FromContext(r.Context()).Warn("token verification failed", "err", err)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized")
}
