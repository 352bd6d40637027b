package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_CreateAndLookup(t *testing.T) {
	store := memory.NewStore()
	users := store.Users()
	ctx := context.Background()

	u, err := users.Create(ctx, "sam", "hash", user.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, []string{user.RoleUser}, u.Roles)
	assert.Empty(t, u.Groups)

	_, err = users.Create(ctx, "sam", "hash", user.RoleUser)
	assert.ErrorIs(t, err, user.ErrNameTaken)

	byName, err := users.GetByName(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, "hash", byName.PasswordHash)

	_, err = users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, user.ErrNotFound)

	exists, err := users.NameExists(ctx, "sam")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUsersRepo_DeleteCascadesMemberships(t *testing.T) {
	store := memory.NewStore()
	users, groups := store.Users(), store.Groups()
	ctx := context.Background()

	u, err := users.Create(ctx, "sam", "hash", user.RoleUser)
	require.NoError(t, err)
	g, err := groups.Create(ctx, "Group 1")
	require.NoError(t, err)
	require.NoError(t, groups.AddMember(ctx, g.ID, u.ID))

	require.NoError(t, users.DeleteUnlessRole(ctx, u.ID, user.RoleAdmin))

	assert.Equal(t, 0, groups.MemberCount(g.ID))
	assert.ErrorIs(t, users.DeleteUnlessRole(ctx, u.ID, user.RoleAdmin), user.ErrNotFound)
}

func TestUsersRepo_DeleteProtected(t *testing.T) {
	store := memory.NewStore()
	users := store.Users()
	ctx := context.Background()

	admin, err := users.Create(ctx, "admin", "hash", user.RoleAdmin)
	require.NoError(t, err)

	assert.ErrorIs(t, users.DeleteUnlessRole(ctx, admin.ID, user.RoleAdmin), user.ErrProtected)

	_, err = users.GetByID(ctx, admin.ID)
	assert.NoError(t, err)
}

func TestGroupsRepo_Membership(t *testing.T) {
	store := memory.NewStore()
	users, groups := store.Users(), store.Groups()
	ctx := context.Background()

	u, err := users.Create(ctx, "sam", "hash", user.RoleUser)
	require.NoError(t, err)
	g, err := groups.Create(ctx, "Group 1")
	require.NoError(t, err)

	assert.ErrorIs(t, groups.AddMember(ctx, 99, u.ID), group.ErrNotFound)
	assert.ErrorIs(t, groups.AddMember(ctx, g.ID, 99), user.ErrNotFound)
	assert.ErrorIs(t, groups.RemoveMember(ctx, g.ID, u.ID), group.ErrNotMember)

	require.NoError(t, groups.AddMember(ctx, g.ID, u.ID))
	assert.ErrorIs(t, groups.AddMember(ctx, g.ID, u.ID), group.ErrAlreadyMember)

	list, err := groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"sam"}, list[0].Users)

	withGroups, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Group 1"}, withGroups.Groups)

	assert.ErrorIs(t, groups.DeleteIfEmpty(ctx, g.ID), group.ErrHasMembers)

	require.NoError(t, groups.RemoveMember(ctx, g.ID, u.ID))
	require.NoError(t, groups.DeleteIfEmpty(ctx, g.ID))
	assert.ErrorIs(t, groups.DeleteIfEmpty(ctx, g.ID), group.ErrNotFound)
}

func TestGroupsRepo_ConcurrentAddKeepsOneEdge(t *testing.T) {
	store := memory.NewStore()
	users, groups := store.Users(), store.Groups()
	ctx := context.Background()

	u, err := users.Create(ctx, "sam", "hash", user.RoleUser)
	require.NoError(t, err)
	g, err := groups.Create(ctx, "Group 1")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if groups.AddMember(ctx, g.ID, u.ID) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, groups.MemberCount(g.ID))
}
