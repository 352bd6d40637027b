package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/security"
	"github.com/geocoder89/roster/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	store := seedStore(t)
	svc := service.NewUserService(store.Users(), discardLogger())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, service.NewUser{Name: "  test_user ", Password: "test_password"}))

	u, err := store.Users().GetByName(ctx, "test_user")
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleUser}, u.Roles)
	assert.NotEqual(t, "test_password", u.PasswordHash)
	assert.NoError(t, security.CheckPassword(u.PasswordHash, "test_password"))
}

func TestUserService_CreateLongPassword(t *testing.T) {
	store := seedStore(t)
	svc := service.NewUserService(store.Users(), discardLogger())
	ctx := context.Background()

	long := strings.Repeat("p", 80)
	require.NoError(t, svc.Create(ctx, service.NewUser{Name: "long_pw", Password: long}))

	u, err := store.Users().GetByName(ctx, "long_pw")
	require.NoError(t, err)
	assert.NoError(t, security.CheckPassword(u.PasswordHash, long))
	assert.Error(t, security.CheckPassword(u.PasswordHash, long[:72]))
}

func TestUserService_CreateValidation(t *testing.T) {
	store := seedStore(t)
	svc := service.NewUserService(store.Users(), discardLogger())

	tests := []struct {
		name       string
		in         service.NewUser
		wantMsg    string
		wantFields map[string][]string
	}{
		{
			name:    "missing name",
			in:      service.NewUser{Password: "test_password"},
			wantMsg: "The name field is required.",
			wantFields: map[string][]string{
				"name": {"The name field is required."},
			},
		},
		{
			name:    "short password",
			in:      service.NewUser{Name: "test_user", Password: "short"},
			wantMsg: "The password field must be at least 8 characters.",
			wantFields: map[string][]string{
				"password": {"The password field must be at least 8 characters."},
			},
		},
		{
			name:    "name taken",
			in:      service.NewUser{Name: "admin", Password: "test_password"},
			wantMsg: "The name has already been taken.",
			wantFields: map[string][]string{
				"name": {"The name has already been taken."},
			},
		},
		{
			name:    "everything wrong",
			in:      service.NewUser{},
			wantMsg: "The name field is required. (and 1 more error)",
			wantFields: map[string][]string{
				"name":     {"The name field is required."},
				"password": {"The password field is required."},
			},
		},
		{
			name:    "name too long",
			in:      service.NewUser{Name: strings.Repeat("a", 256), Password: "test_password"},
			wantMsg: "The name field must not be greater than 255 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tt.in)
			appErr := requireKind(t, err, apperr.KindValidation)

			assert.Equal(t, tt.wantMsg, appErr.Message)
			for field, msgs := range tt.wantFields {
				assert.Equal(t, msgs, appErr.Fields[field])
			}
		})
	}

	users, err := store.Users().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2, "failed creates must not persist anything")
}

func TestUserService_Delete(t *testing.T) {
	store := seedStore(t)
	svc := service.NewUserService(store.Users(), discardLogger())
	ctx := context.Background()

	admin, err := store.Users().GetByName(ctx, "admin")
	require.NoError(t, err)
	plain, err := store.Users().GetByName(ctx, "user")
	require.NoError(t, err)

	appErr := requireKind(t, svc.Delete(ctx, admin.ID), apperr.KindForbidden)
	assert.Equal(t, "You are not authorized to delete this user!", appErr.Message)

	appErr = requireKind(t, svc.Delete(ctx, 999), apperr.KindNotFound)
	assert.Equal(t, "User not found!", appErr.Message)

	require.NoError(t, svc.Delete(ctx, plain.ID))

	_, err = store.Users().GetByID(ctx, plain.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	requireKind(t, svc.Delete(ctx, plain.ID), apperr.KindNotFound)
}

func TestUserService_List(t *testing.T) {
	store := seedStore(t)
	svc := service.NewUserService(store.Users(), discardLogger())

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Name)
	assert.Equal(t, []string{user.RoleAdmin}, users[0].Roles)
}
