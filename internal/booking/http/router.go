package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers and owns the route
// table. Every route declares its own pipeline. Public routes rate limit
// by IP; protected routes authenticate first so the subject-keyed limiter
// sees an Identity, then apply the role gate, then the handler.
type Router struct {
	Mux  *http.ServeMux
	base httpx.Pipeline

	verifier     *jwtx.Verifier
	counters     httpx.CounterStore
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	AuthService         *service.AuthService
	LawyerService       *service.LawyerService
	BookingService      *service.BookingService
	ReviewService       *service.ReviewService
	NotificationService *service.NotificationService
	AdminService        *service.AdminService
}

func NewRouter(
	verifier *jwtx.Verifier,
	counters httpx.CounterStore,
	buildVersion string,
	allowedOrigins []string,
	dev bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		counters:     counters,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Outer pipeline, in request order. Recovery runs innermost of the
	// four so panics are logged with the request-scoped logger.
	r.base = httpx.Pipeline{
		httpx.SecurityHeaders(),
		httpx.CORS(allowedOrigins),
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(dev),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerLawyers()
	r.registerBookings()
	r.registerNotifications()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.base.Then(r.Mux).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints are keyed by IP + submitted email so one
	// address can't lock a whole NAT out of an account, and vice versa.
	r.Mux.Handle("POST /v1/auth/register", httpx.Pipeline{
		httpx.RateLimitByIPAndJSONField(httpx.LoginPolicy, r.counters, "email"),
	}.ThenFunc(h.HandleRegister))

	r.Mux.Handle("POST /v1/auth/login", httpx.Pipeline{
		httpx.RateLimitByIPAndJSONField(httpx.LoginPolicy, r.counters, "email"),
	}.ThenFunc(h.HandleLogin))

	r.Mux.Handle("GET /v1/auth/me", httpx.Pipeline{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitBySubject(httpx.BrowsePolicy, r.counters),
	}.ThenFunc(h.HandleMe))
}

func (r *Router) registerLawyers() {
	h := &LawyersHandler{LawyerService: r.LawyerService}

	// Public directory endpoints.
	browse := httpx.Pipeline{
		httpx.RateLimitByIP(httpx.PublicPolicy, r.counters),
	}
	r.Mux.Handle("GET /v1/lawyers", browse.ThenFunc(h.HandleList))
	r.Mux.Handle("GET /v1/lawyers/{id}/reviews", browse.ThenFunc(h.HandleReviews))

	// The detail route takes an optional token so an applicant can see
	// their own profile while it is still unverified.
	r.Mux.Handle("GET /v1/lawyers/{id}",
		browse.With(httpx.AuthnOptional(r.verifier)).ThenFunc(h.HandleGet))

	// Applying is for plain USER accounts; verified lawyers already have
	// a profile and admins don't practise.
	r.Mux.Handle("POST /v1/lawyers/apply", httpx.Pipeline{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitBySubject(httpx.MutatePolicy, r.counters),
		httpx.RequireRole(jwtx.RoleUser),
	}.ThenFunc(h.HandleApply))
}

func (r *Router) registerBookings() {
	h := &BookingsHandler{
		BookingService: r.BookingService,
		ReviewService:  r.ReviewService,
	}

	authed := func(p httpx.Policy, gates ...jwtx.Role) httpx.Pipeline {
		pipeline := httpx.Pipeline{
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(p, r.counters),
		}
		if len(gates) > 0 {
			pipeline = pipeline.With(httpx.RequireRole(gates...))
		}
		return pipeline
	}

	r.Mux.Handle("POST /v1/bookings",
		authed(httpx.MutatePolicy, jwtx.RoleUser, jwtx.RoleLawyer).ThenFunc(h.HandleCreate))
	r.Mux.Handle("GET /v1/bookings",
		authed(httpx.BrowsePolicy).ThenFunc(h.HandleList))
	r.Mux.Handle("POST /v1/bookings/{id}/cancel",
		authed(httpx.MutatePolicy).ThenFunc(h.HandleCancel))

	// Confirm/reject/complete belong to the booked lawyer (or an admin).
	r.Mux.Handle("POST /v1/bookings/{id}/status",
		authed(httpx.MutatePolicy, jwtx.RoleLawyer, jwtx.RoleAdmin).ThenFunc(h.HandleStatus))

	// Reviews come from clients.
	r.Mux.Handle("POST /v1/bookings/{id}/review",
		authed(httpx.MutatePolicy, jwtx.RoleUser).ThenFunc(h.HandleReview))
}

func (r *Router) registerNotifications() {
	h := &NotificationsHandler{NotificationService: r.NotificationService}

	r.Mux.Handle("GET /v1/notifications", httpx.Pipeline{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitBySubject(httpx.BrowsePolicy, r.counters),
	}.ThenFunc(h.HandleList))

	r.Mux.Handle("POST /v1/notifications/{id}/read", httpx.Pipeline{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitBySubject(httpx.MutatePolicy, r.counters),
	}.ThenFunc(h.HandleMarkRead))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}

	secured := func(p httpx.Policy) httpx.Pipeline {
		return httpx.Pipeline{
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(p, r.counters),
			httpx.RequireRole(jwtx.RoleAdmin),
		}
	}

	r.Mux.Handle("GET /v1/admin/users", secured(httpx.BrowsePolicy).ThenFunc(h.HandleListUsers))
	r.Mux.Handle("POST /v1/admin/lawyers/{id}/verify", secured(httpx.MutatePolicy).ThenFunc(h.HandleVerifyLawyer))
	r.Mux.Handle("POST /v1/admin/users/{id}/reset-password", secured(httpx.MutatePolicy).ThenFunc(h.HandleResetPassword))
	r.Mux.Handle("GET /v1/admin/stats", secured(httpx.BrowsePolicy).ThenFunc(h.HandleStats))
}

func (r *Router) registerSystem() {
	// Monitoring systems poll these frequently.
	probes := httpx.Pipeline{
		httpx.RateLimitByIP(httpx.PublicPolicy, r.counters),
	}
	r.Mux.Handle("GET /livez", probes.Then(LivezHandler(r.startTime, r.buildVersion)))
	r.Mux.Handle("GET /readyz", probes.Then(ReadyzHandler(r.startTime, r.buildVersion, r.store)))
}
