package actorctx_test

import (
	"context"
	"testing"

	"github.com/geocoder89/roster/internal/actorctx"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := actorctx.UserFrom(ctx)
	assert.False(t, ok)
	assert.Zero(t, actorctx.UserIDFrom(ctx))

	ctx = actorctx.WithUser(ctx, user.User{ID: 7, Name: "admin", Roles: []string{user.RoleAdmin}})

	u, ok := actorctx.UserFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "admin", u.Name)
	assert.Equal(t, int64(7), actorctx.UserIDFrom(ctx))
}

func TestUserFrom_ZeroUserIsAnonymous(t *testing.T) {
	ctx := actorctx.WithUser(context.Background(), user.User{})

	_, ok := actorctx.UserFrom(ctx)
	assert.False(t, ok)
}
