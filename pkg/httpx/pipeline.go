package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

// Middleware decorates an http.Handler with one pipeline stage. A stage
// that rejects the request writes the error envelope itself and does not
// call the next handler, so nothing after a rejection runs.
type Middleware func(http.Handler) http.Handler

// Pipeline is an explicit, ordered list of stages: index 0 runs first.
// Route registrations build pipelines as data instead of nesting calls,
// which keeps the stage order identical across requests and reviewable in
// one place.
type Pipeline []Middleware

// Then composes the pipeline in front of the final handler.
func (p Pipeline) Then(h http.Handler) http.Handler {
	for i := len(p) - 1; i >= 0; i-- {
		h = p[i](h)
	}
	return h
}

// ThenFunc is Then for handler funcs.
func (p Pipeline) ThenFunc(h http.HandlerFunc) http.Handler {
	return p.Then(h)
}

// With returns a new pipeline with the extra stages appended. The receiver
// is not modified, so a shared base pipeline can be extended per route.
func (p Pipeline) With(more ...Middleware) Pipeline {
	out := make(Pipeline, 0, len(p)+len(more))
	out = append(out, p...)
	out = append(out, more...)
	return out
}

// Recover converts a panic in any later stage or handler into the stable
// 500 envelope. In dev configurations the panic detail is returned to the
// caller; otherwise only a generic message leaves the process and the
// detail goes to the log.
func Recover(dev bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				log := slogx.FromContext(r.Context())
				log.Error("panic in request pipeline",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				msg := "internal server error"
				if dev {
					msg = "internal server error: " + stringify(rec)
				}
				WriteError(w, http.StatusInternalServerError, msg)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	default:
		return "unexpected error"
	}
}
