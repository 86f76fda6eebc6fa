package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyEmail  ctxKey = "email"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	ID    string
	Email string
}

// WithPrincipal stores the authenticated caller on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.ID)
	ctx = context.WithValue(ctx, CtxKeyEmail, p.Email)
	return ctx
}

// PrincipalFromContext returns the caller set by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	if !ok || id == "" {
		return Principal{}, false
	}
	email, _ := ctx.Value(CtxKeyEmail).(string)
	return Principal{ID: id, Email: email}, true
}
