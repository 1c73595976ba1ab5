package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

// Policy bounds request frequency for one class of endpoint. Counters for
// different policies never collide: the stored key is "<policy id>:<key>".
type Policy struct {
	// ID namespaces this policy's counters.
	ID string
	// Limit is the number of requests allowed per window. The Limit+1th
	// request inside a window is rejected.
	Limit int
	// Window is the fixed counting window. The counter resets only when
	// the window elapses, never early.
	Window time.Duration
}

// Endpoint-class policies. Overridable via RATELIMIT_{ID}_REQUESTS and
// RATELIMIT_{ID}_WINDOW_SEC environment variables (useful in tests).
var (
	// LoginPolicy throttles credential-guessing on auth endpoints.
	LoginPolicy = Policy{ID: "login", Limit: 5, Window: time.Minute}

	// MutatePolicy covers authenticated writes (bookings, reviews).
	MutatePolicy = Policy{ID: "mutate", Limit: 20, Window: time.Minute}

	// BrowsePolicy covers authenticated reads.
	BrowsePolicy = Policy{ID: "browse", Limit: 100, Window: time.Minute}

	// PublicPolicy covers unauthenticated read-only endpoints.
	PublicPolicy = Policy{ID: "public", Limit: 1000, Window: time.Minute}
)

func init() {
	LoginPolicy = ParsePolicyFromEnv(LoginPolicy)
	MutatePolicy = ParsePolicyFromEnv(MutatePolicy)
	BrowsePolicy = ParsePolicyFromEnv(BrowsePolicy)
	PublicPolicy = ParsePolicyFromEnv(PublicPolicy)
}

// ParsePolicyFromEnv overlays RATELIMIT_{ID}_REQUESTS and
// RATELIMIT_{ID}_WINDOW_SEC on top of the given defaults.
func ParsePolicyFromEnv(def Policy) Policy {
	p := def
	prefix := "RATELIMIT_" + strings.ToUpper(def.ID)

	if val := os.Getenv(prefix + "_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if val := os.Getenv(prefix + "_WINDOW_SEC"); val != "" {
		if sec, err := strconv.Atoi(val); err == nil && sec > 0 {
			p.Window = time.Duration(sec) * time.Second
		}
	}
	return p
}

// CounterStore is the injected home of rate-limit state, the only shared
// mutable state in the pipeline. Incr atomically increments the counter
// for key within the current fixed window and reports the new count plus
// the time remaining until the window rolls over. Implementations must be
// safe for concurrent use.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, retryIn time.Duration, err error)
}

// MemoryCounters is the single-process CounterStore. Multi-process
// deployments share counters through RedisCounters instead.
type MemoryCounters struct {
	mu          sync.Mutex
	windows     map[string]*counterWindow
	lastCleanup time.Time
	now         func() time.Time
}

type counterWindow struct {
	start  time.Time
	length time.Duration
	count  int64
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{
		windows:     make(map[string]*counterWindow),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (m *MemoryCounters) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w := m.windows[key]
	if w == nil || now.Sub(w.start) >= window {
		// Window rollover: fresh window starting now.
		w = &counterWindow{start: now, length: window}
		m.windows[key] = w
	}
	w.count++

	m.maybeCleanup(now)
	return w.count, window - now.Sub(w.start), nil
}

// maybeCleanup drops elapsed windows so ephemeral keys don't accumulate.
// Caller holds the lock.
func (m *MemoryCounters) maybeCleanup(now time.Time) {
	if now.Sub(m.lastCleanup) < 5*time.Minute {
		return
	}
	m.lastCleanup = now
	for key, w := range m.windows {
		if now.Sub(w.start) >= w.length {
			delete(m.windows, key)
		}
	}
}

// KeyExtractor derives the counting key from a request (IP, subject, ...).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, honouring X-Forwarded-For and
// X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SubjectKeyExtractor returns the authenticated subject ID, or "" when the
// request carries no Identity.
func SubjectKeyExtractor(r *http.Request) string {
	if id, ok := IdentityFromContext(r.Context()); ok {
		return id.Subject
	}
	return ""
}

// JSONFieldKeyExtractor pulls a string field out of a JSON request body,
// restoring the body for later stages. Used to key login throttling by
// IP + email so one address can't lock out a whole NAT.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return ""
		}
		if v, ok := payload[field].(string); ok {
			return strings.ToLower(strings.TrimSpace(v))
		}
		return ""
	}
}

// CompositeKeyExtractor joins several extractors, skipping empty parts.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// RateLimit enforces a policy against the injected counter store. On the
// Limit+1th request inside a window it responds 429 with Retry-After and
// does not reset the counter early. A store failure fails open with a log
// line: availability beats throttling accuracy here.
func RateLimit(p Policy, counters CounterStore, extract KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := extract(r)
			if key == "" {
				log.Warn("rate limit: no key extracted, allowing request", "policy", p.ID)
				next.ServeHTTP(w, r)
				return
			}

			count, retryIn, err := counters.Incr(ctx, p.ID+":"+key, p.Window)
			if err != nil {
				log.Error("rate limit store unavailable, allowing request", "policy", p.ID, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(p.Limit) {
				retryAfter := max(int(retryIn.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(p.Limit))
				w.Header().Set("X-RateLimit-Window", p.Window.String())

				log.Warn("rate limit exceeded",
					"policy", p.ID,
					"key", key,
					"count", count,
					"retry_after", retryAfter,
				)
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client IP only.
func RateLimitByIP(p Policy, counters CounterStore) Middleware {
	return RateLimit(p, counters, IPKeyExtractor)
}

// RateLimitBySubject limits by authenticated subject, falling back to IP
// when no Identity is attached. It must run after AuthnMiddleware on
// protected routes; placed before it, every request keys by IP.
func RateLimitBySubject(p Policy, counters CounterStore) Middleware {
	return RateLimit(p, counters, func(r *http.Request) string {
		if subject := SubjectKeyExtractor(r); subject != "" {
			return subject
		}
		return IPKeyExtractor(r)
	})
}

// RateLimitByIPAndJSONField limits by IP plus a JSON body field, e.g.
// login attempts per (IP, email).
func RateLimitByIPAndJSONField(p Policy, counters CounterStore, field string) Middleware {
	return RateLimit(p, counters, CompositeKeyExtractor(":",
		IPKeyExtractor,
		JSONFieldKeyExtractor(field),
	))
}
