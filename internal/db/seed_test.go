package db_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/roster/internal/db"
	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/repo/memory"
	"github.com/geocoder89/roster/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin(t *testing.T) {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	require.NoError(t, db.EnsureAdmin(ctx, store.Users(), "admin", "", log))
	users, _ := store.Users().List(ctx)
	assert.Empty(t, users, "empty password disables the admin seed")

	require.NoError(t, db.EnsureAdmin(ctx, store.Users(), "admin", "admin_password", log))
	require.NoError(t, db.EnsureAdmin(ctx, store.Users(), "admin", "other_password", log))

	admin, err := store.Users().GetByName(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, security.CheckPassword(admin.PasswordHash, "admin_password"))
}

func TestSeedDemo_Idempotent(t *testing.T) {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	require.NoError(t, db.SeedDemo(ctx, store.Users(), store.Groups(), log))
	require.NoError(t, db.SeedDemo(ctx, store.Users(), store.Groups(), log))

	u, err := store.Users().GetByName(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleUser}, u.Roles)
	assert.Equal(t, []string{"Group 1"}, u.Groups)

	groups, err := store.Groups().List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 10)
	assert.Equal(t, "Group 1", groups[0].Name)
	assert.Equal(t, "Group 10", groups[9].Name)
}

// staleGroups hides every group from the first List call, the view a seeder
// has when another one creates the groups right after it looked.
type staleGroups struct {
	*memory.GroupsRepo
	listCalls int
}

func (g *staleGroups) List(ctx context.Context) ([]group.Group, error) {
	g.listCalls++
	if g.listCalls == 1 {
		return nil, nil
	}
	return g.GroupsRepo.List(ctx)
}

func TestSeedDemo_GroupCreatedConcurrently(t *testing.T) {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	existing, err := store.Groups().Create(ctx, "Group 1")
	require.NoError(t, err)

	groups := &staleGroups{GroupsRepo: store.Groups()}
	require.NoError(t, db.SeedDemo(ctx, store.Users(), groups, log))

	u, err := store.Users().GetByName(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"Group 1"}, u.Groups, "membership goes to the group the other seeder created")

	all, err := store.Groups().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, existing.ID, all[0].ID)
	assert.Equal(t, []string{"user"}, all[0].Users)
}
