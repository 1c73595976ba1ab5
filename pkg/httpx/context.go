package httpx

import (
	"context"

	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// WithIdentity attaches a verified Identity to the request context.
// Only AuthnMiddleware should call this; everything downstream reads.
func WithIdentity(ctx context.Context, id jwtx.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the Identity attached by AuthnMiddleware.
// ok is false on routes where authentication did not run or did not pass.
func IdentityFromContext(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(jwtx.Identity)
	return id, ok
}
