package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nyaybooker/nyaybooker/pkg/idx"
)

// HTTPMiddleware stamps every request with a request ID, attaches a
// contextual logger, and logs the outcome. It wraps the rest of the
// pipeline, so even requests rejected by a later stage get an access log
// line with their final status.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			// Honour an inbound X-Request-ID so IDs correlate across hops.
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = idx.New().String()
			}
			w.Header().Set("X-Request-ID", reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			r = r.WithContext(WithContext(r.Context(), logger))
			next.ServeHTTP(rw, r)

			attrs := []any{
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			}
			if err := r.Context().Err(); err != nil {
				// Client went away mid-pipeline; record the abort.
				attrs = append(attrs, "aborted", true)
			}
			logger.Info("http_request", attrs...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
