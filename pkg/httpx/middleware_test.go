package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyaybooker/nyaybooker/pkg/httpx"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var middlewareTestSecret = []byte("test-secret-test-secret-test-secr")

func testTokenPair(t *testing.T) (*jwtx.Signer, *jwtx.Verifier) {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(middlewareTestSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(middlewareTestSecret, "")
	require.NoError(t, err)
	return signer, verifier
}

func signToken(t *testing.T, signer *jwtx.Signer, subject string, role jwtx.Role, ttl time.Duration) string {
	t.Helper()

	token, err := signer.Sign(jwtx.NewSessionClaims(subject, role, ttl, "", time.Now().UTC()))
	require.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthnMiddleware(t *testing.T) {
	signer, verifier := testTokenPair(t)

	var attached jwtx.Identity
	var attachedOK bool
	handler := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attached, attachedOK = httpx.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token attaches identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-1", jwtx.RoleUser, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, attachedOK)
		require.Equal(t, "user-1", attached.Subject)
		require.Equal(t, jwtx.RoleUser, attached.Role)
	})

	rejected := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			attachedOK = false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.False(t, attachedOK, "handler must not run after rejection")

			env := decodeEnvelope(t, rec)
			require.False(t, env.Success)
			require.Equal(t, "unauthorized", env.Error)
			require.Equal(t, http.StatusUnauthorized, env.StatusCode)
		})
	}

	t.Run("expired token rejected", func(t *testing.T) {
		attachedOK = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-1", jwtx.RoleUser, -time.Minute))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, attachedOK)
	})
}

func TestAuthnOptional(t *testing.T) {
	signer, verifier := testTokenPair(t)

	var attached jwtx.Identity
	var attachedOK bool
	handler := httpx.AuthnOptional(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attached, attachedOK = httpx.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous request passes through without identity", func(t *testing.T) {
		attachedOK = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, attachedOK)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-9", jwtx.RoleUser, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, attachedOK)
		require.Equal(t, "user-9", attached.Subject)
	})

	t.Run("present but invalid token is rejected", func(t *testing.T) {
		attachedOK = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, attachedOK)
	})
}

func TestRequireRole(t *testing.T) {
	signer, verifier := testTokenPair(t)

	adminOnly := httpx.Pipeline{
		httpx.AuthnMiddleware(verifier),
		httpx.RequireRole(jwtx.RoleAdmin),
	}.Then(okHandler())

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "admin-1", jwtx.RoleAdmin, time.Hour))
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user role gets 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-1", jwtx.RoleUser, time.Hour))
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		env := decodeEnvelope(t, rec)
		require.Equal(t, "forbidden", env.Error)
		require.Equal(t, http.StatusForbidden, env.StatusCode)
	})

	t.Run("no identity gets 401, not 403", func(t *testing.T) {
		// Gate used without auth having attached anything.
		bare := httpx.RequireRole(jwtx.RoleAdmin)(okHandler())
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("multi-role set", func(t *testing.T) {
		gate := httpx.Pipeline{
			httpx.AuthnMiddleware(verifier),
			httpx.RequireRole(jwtx.RoleUser, jwtx.RoleLawyer),
		}.Then(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "lawyer-1", jwtx.RoleLawyer, time.Hour))
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPipelineOrderAndShortCircuit(t *testing.T) {
	var order []string
	stage := func(name string, reject bool) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				if reject {
					httpx.WriteError(w, http.StatusForbidden, "rejected by "+name)
					return
				}
				next.ServeHTTP(w, r)
			})
		}
	}

	t.Run("stages run in declared order", func(t *testing.T) {
		order = nil
		p := httpx.Pipeline{stage("a", false), stage("b", false), stage("c", false)}
		rec := httptest.NewRecorder()
		p.Then(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, []string{"a", "b", "c"}, order)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejection stops later stages", func(t *testing.T) {
		order = nil
		handlerRan := false
		p := httpx.Pipeline{stage("a", false), stage("b", true), stage("c", false)}
		rec := httptest.NewRecorder()
		p.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerRan = true
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, []string{"a", "b"}, order)
		require.False(t, handlerRan)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("With does not mutate the base pipeline", func(t *testing.T) {
		base := httpx.Pipeline{stage("a", false)}
		extended := base.With(stage("b", false))
		require.Len(t, base, 1)
		require.Len(t, extended, 2)
	})
}

func TestRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	t.Run("prod hides detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.Recover(false)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeEnvelope(t, rec)
		require.Equal(t, "internal server error", env.Error)
	})

	t.Run("dev includes detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.Recover(true)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, decodeEnvelope(t, rec).Error, "boom")
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.SecurityHeaders()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestCORS(t *testing.T) {
	allowed := httpx.CORS([]string{"https://app.nyaybooker.in"})

	t.Run("no origin passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		allowed(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.nyaybooker.in")
		rec := httptest.NewRecorder()
		allowed(okHandler()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "https://app.nyaybooker.in", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin rejected before handler", func(t *testing.T) {
		ran := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		allowed(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { ran = true })).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.False(t, ran)
	})

	t.Run("preflight answered directly", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.nyaybooker.in")
		rec := httptest.NewRecorder()
		allowed(okHandler()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anything.example")
		rec := httptest.NewRecorder()
		httpx.CORS([]string{"*"})(okHandler()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestEnvelopeShapes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.WriteData(rec, http.StatusOK, map[string]string{"id": "123"})

		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.JSONEq(t, `{"success":true,"data":{"id":"123"}}`, rec.Body.String())
	})

	t.Run("error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.WriteError(rec, http.StatusTeapot, "nope")
		require.JSONEq(t, `{"success":false,"error":"nope","statusCode":418}`, rec.Body.String())
	})
}
