package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bookinghttp "github.com/nyaybooker/nyaybooker/internal/booking/http"
	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/internal/booking/store/drivers/sqlite"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("router-test-secret-router-test-se")

type testServer struct {
	srv    *httptest.Server
	store  store.Store
	signer *jwtx.Signer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret, "nyaybooker-test")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := bookinghttp.NewRouter(verifier, httpx.NewMemoryCounters(), "test", []string{"*"}, true, st, logger)
	router.AuthService = &service.AuthService{
		Store: st, Signer: signer, Issuer: "nyaybooker-test", SessionTTL: time.Hour,
	}
	router.LawyerService = &service.LawyerService{Store: st}
	router.BookingService = &service.BookingService{Store: st}
	router.ReviewService = &service.ReviewService{Store: st}
	router.NotificationService = &service.NotificationService{Store: st}
	router.AdminService = &service.AdminService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: st, signer: signer}
}

// do issues a JSON request and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, httpx.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env httpx.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// data re-marshals the envelope payload into out.
func data(t *testing.T, env httpx.Envelope, out any) {
	t.Helper()

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

type sessionData struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func (ts *testServer) register(t *testing.T, email string) sessionData {
	t.Helper()

	code, env := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "correct horse battery",
		"full_name": "Test User",
	})
	require.Equal(t, http.StatusCreated, code)

	var sess sessionData
	data(t, env, &sess)
	return sess
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()

	token, err := ts.signer.Sign(jwtx.NewSessionClaims(
		"admin-0", jwtx.RoleAdmin, time.Hour, "nyaybooker-test", time.Now().UTC()))
	require.NoError(t, err)
	return token
}

func TestEndToEndBookingFlow(t *testing.T) {
	ts := newTestServer(t)

	client := ts.register(t, "client@example.com")
	counsel := ts.register(t, "counsel@example.com")
	admin := ts.adminToken(t)

	// Counsel applies and the admin verifies the profile.
	code, env := ts.do(t, http.MethodPost, "/v1/lawyers/apply", counsel.AccessToken, map[string]any{
		"specialization": "criminal",
		"bar_council_id": "BAR/42",
		"city":           "Delhi",
		"fee_per_hour":   150000,
	})
	require.Equal(t, http.StatusCreated, code)

	var lawyer struct {
		ID string `json:"id"`
	}
	data(t, env, &lawyer)

	code, _ = ts.do(t, http.MethodPost, "/v1/admin/lawyers/"+lawyer.ID+"/verify", admin, nil)
	require.Equal(t, http.StatusOK, code)

	// The directory now shows the lawyer to anyone.
	code, env = ts.do(t, http.MethodGet, "/v1/lawyers?city=Delhi", "", nil)
	require.Equal(t, http.StatusOK, code)
	var listing []map[string]any
	data(t, env, &listing)
	require.Len(t, listing, 1)

	// The client books a slot.
	starts := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	code, env = ts.do(t, http.MethodPost, "/v1/bookings", client.AccessToken, map[string]any{
		"lawyer_id": lawyer.ID,
		"starts_at": starts,
		"ends_at":   starts.Add(time.Hour),
		"subject":   "bail application",
	})
	require.Equal(t, http.StatusCreated, code)

	var booking struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	data(t, env, &booking)
	require.Equal(t, "PENDING", booking.Status)

	// Counsel's original token still carries USER; the status route is
	// gated on LAWYER, so they log in again after verification.
	code, _ = ts.do(t, http.MethodPost, "/v1/bookings/"+booking.ID+"/status", counsel.AccessToken,
		map[string]string{"status": "CONFIRMED"})
	require.Equal(t, http.StatusForbidden, code)

	code, env = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "counsel@example.com", "password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, code)
	var relogged sessionData
	data(t, env, &relogged)
	require.Equal(t, "LAWYER", relogged.User.Role)

	for _, status := range []string{"CONFIRMED", "COMPLETED"} {
		code, env = ts.do(t, http.MethodPost, "/v1/bookings/"+booking.ID+"/status", relogged.AccessToken,
			map[string]string{"status": status})
		require.Equal(t, http.StatusOK, code, "transition to %s: %+v", status, env)
	}

	// The client reviews the completed booking.
	code, _ = ts.do(t, http.MethodPost, "/v1/bookings/"+booking.ID+"/review", client.AccessToken,
		map[string]any{"rating": 5, "comment": "excellent counsel"})
	require.Equal(t, http.StatusCreated, code)

	code, env = ts.do(t, http.MethodGet, "/v1/lawyers/"+lawyer.ID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, code)
	var reviewPage struct {
		Reviews       []map[string]any `json:"reviews"`
		AverageRating float64          `json:"average_rating"`
		ReviewCount   int              `json:"review_count"`
	}
	data(t, env, &reviewPage)
	require.Len(t, reviewPage.Reviews, 1)
	require.InDelta(t, 5.0, reviewPage.AverageRating, 0.001)
	require.Equal(t, 1, reviewPage.ReviewCount)

	// Both parties accumulated notifications along the way.
	code, env = ts.do(t, http.MethodGet, "/v1/notifications", client.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var notes []struct {
		ID   string `json:"id"`
		Read bool   `json:"read"`
	}
	data(t, env, &notes)
	require.NotEmpty(t, notes)

	code, _ = ts.do(t, http.MethodPost, "/v1/notifications/"+notes[0].ID+"/read", client.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)

	// Admin stats reflect the activity.
	code, env = ts.do(t, http.MethodGet, "/v1/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		Users           int64 `json:"users"`
		VerifiedLawyers int64 `json:"verified_lawyers"`
		Bookings        int64 `json:"bookings"`
		Reviews         int64 `json:"reviews"`
	}
	data(t, env, &stats)
	require.EqualValues(t, 2, stats.Users)
	require.EqualValues(t, 1, stats.VerifiedLawyers)
	require.EqualValues(t, 1, stats.Bookings)
	require.EqualValues(t, 1, stats.Reviews)
}

func TestAuthenticationFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "someone@example.com")

	t.Run("missing token", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/v1/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, code)
		require.False(t, env.Success)
	})

	t.Run("garbage token", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/v1/auth/me", "not.a.jwt", nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := ts.signer.Sign(jwtx.NewSessionClaims(
			"user-x", jwtx.RoleUser, -time.Minute, "nyaybooker-test", time.Now().UTC()))
		require.NoError(t, err)

		code, _ := ts.do(t, http.MethodGet, "/v1/auth/me", expired, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		otherSigner, err := jwtx.NewSignerHS256([]byte("another-secret-another-secret-ano"))
		require.NoError(t, err)
		forged, err := otherSigner.Sign(jwtx.NewSessionClaims(
			"user-x", jwtx.RoleAdmin, time.Hour, "nyaybooker-test", time.Now().UTC()))
		require.NoError(t, err)

		code, _ := ts.do(t, http.MethodGet, "/v1/admin/stats", forged, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestRoleGateOnAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "plain@example.com")

	t.Run("user role receives 403", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/v1/admin/users", user.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, code)
		require.Equal(t, "forbidden", env.Error)
	})

	t.Run("anonymous receives 401, not 403", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/v1/admin/users", "", nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("admin role passes", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/v1/admin/users", ts.adminToken(t), nil)
		require.Equal(t, http.StatusOK, code)
	})
}

func TestUnverifiedProfileVisibility(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register(t, "applicant@example.com")

	code, env := ts.do(t, http.MethodPost, "/v1/lawyers/apply", owner.AccessToken, map[string]any{
		"specialization": "tax",
		"bar_council_id": "BAR/VIS/1",
		"city":           "Pune",
		"fee_per_hour":   100000,
	})
	require.Equal(t, http.StatusCreated, code)
	var lawyer struct {
		ID string `json:"id"`
	}
	data(t, env, &lawyer)

	t.Run("hidden from anonymous browsers", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/v1/lawyers/"+lawyer.ID, "", nil)
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("visible to its owner", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/v1/lawyers/"+lawyer.ID, owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, code)
		require.True(t, env.Success)
	})

	t.Run("hidden from other signed-in users", func(t *testing.T) {
		other := ts.register(t, "bystander@example.com")
		code, _ := ts.do(t, http.MethodGet, "/v1/lawyers/"+lawyer.ID, other.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("bad token on the optional route still rejected", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/v1/lawyers/"+lawyer.ID, "not.a.jwt", nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestAdminPasswordReset(t *testing.T) {
	ts := newTestServer(t)
	locked := ts.register(t, "forgetful@example.com")

	code, env := ts.do(t, http.MethodPost,
		"/v1/admin/users/"+locked.User.ID+"/reset-password", ts.adminToken(t), nil)
	require.Equal(t, http.StatusOK, code)
	var reset struct {
		Password string `json:"password"`
	}
	data(t, env, &reset)
	require.NotEmpty(t, reset.Password)

	// The old credential is gone; the temporary one logs in.
	code, _ = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "forgetful@example.com", "password": "correct horse battery",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "forgetful@example.com", "password": reset.Password,
	})
	require.Equal(t, http.StatusOK, code)
}

func TestLoginRateLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "victim@example.com") // request 1 against the login policy for this email

	attempt := func() (int, httpx.Envelope) {
		return ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"email": "victim@example.com", "password": "wrong-password",
		})
	}

	// Requests 2..5 inside the window are admitted (and fail auth).
	for i := 0; i < 4; i++ {
		code, _ := attempt()
		require.Equal(t, http.StatusUnauthorized, code, "attempt %d", i+2)
	}

	// Request 6 trips the 5/window login policy.
	code, env := attempt()
	require.Equal(t, http.StatusTooManyRequests, code)
	require.False(t, env.Success)
	require.Contains(t, env.Error, "rate limit")

	// A different credential key is unaffected.
	code, _ = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "other@example.com", "password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestHealthProbes(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/livez", "/readyz"} {
		code, env := ts.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, code, path)
		require.True(t, env.Success)
	}
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	t.Run("malformed JSON body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/v1/auth/register",
			strings.NewReader("{not json"))
		require.NoError(t, err)
		resp, err := ts.srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid email", func(t *testing.T) {
		code, env := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
			"email": "not-an-email", "password": "long enough pass", "full_name": "X",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Contains(t, env.Error, "email")
	})

	t.Run("unknown booking status", func(t *testing.T) {
		sess := ts.register(t, fmt.Sprintf("u%d@example.com", time.Now().UnixNano()))
		code, _ := ts.do(t, http.MethodPost, "/v1/bookings/some-id/status", sess.AccessToken,
			map[string]string{"status": "WHATEVER"})
		// The role gate rejects the USER before the payload is parsed.
		require.Equal(t, http.StatusForbidden, code)
	})
}
