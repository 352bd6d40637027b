// Package actorctx carries the resolved caller of a request through
// context.Context so flows never read it from shared state.
package actorctx

import (
	"context"

	"github.com/geocoder89/roster/internal/domain/user"
)

type ctxKey struct{}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(user.User)

	return u, ok && u.ID != 0
}

// UserIDFrom returns the caller id, or 0 when the request is anonymous.
func UserIDFrom(ctx context.Context) int64 {
	u, ok := UserFrom(ctx)
	if !ok {
		return 0
	}
	return u.ID
}
