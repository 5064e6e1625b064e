package httpapi

import (
	"context"

	"github.com/notehub-app/notehub/internal/model"
)

type ctxKey string

const userKey ctxKey = "notehub.user"

// WithUser stores the authenticated user in context. The middleware resolves
// the token to a user record once per request; handlers reuse that record
// instead of re-querying.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromCtx fetches the authenticated user from context.
func UserFromCtx(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
