package httpx

import (
	"context"

	"github.com/aussiebroadwan/cinedash/pkg/idx"
)

type ctxKey string

const ctxKeyClientID ctxKey = "client_id"

// WithClientID stores the browser client id in ctx.
func WithClientID(ctx context.Context, id idx.ID) context.Context {
	return context.WithValue(ctx, ctxKeyClientID, id)
}

// ClientIDFromContext returns the browser client id set by the client cookie
// middleware.
func ClientIDFromContext(ctx context.Context) (idx.ID, bool) {
	id, ok := ctx.Value(ctxKeyClientID).(idx.ID)
	return id, ok && !id.IsZero()
}
