package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/repo/memory"
	"github.com/geocoder89/roster/internal/security"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTokens struct {
	issueFn  func(ctx context.Context, u user.User) (string, error)
	revokeFn func(ctx context.Context, raw string) error
	issued   []int64
}

func (f *fakeTokens) Issue(ctx context.Context, u user.User) (string, error) {
	f.issued = append(f.issued, u.ID)
	if f.issueFn != nil {
		return f.issueFn(ctx, u)
	}
	return "token-for-" + u.Name, nil
}

func (f *fakeTokens) Revoke(ctx context.Context, raw string) error {
	if f.revokeFn != nil {
		return f.revokeFn(ctx, raw)
	}
	return nil
}

// seedStore mirrors the demo seed: admin (admin role), user (user role).
func seedStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()

	for _, s := range []struct{ name, password, role string }{
		{"admin", "admin_password", user.RoleAdmin},
		{"user", "user_password", user.RoleUser},
	} {
		hash, err := security.HashPassword(s.password)
		require.NoError(t, err)
		_, err = store.Users().Create(ctx, s.name, hash, s.role)
		require.NoError(t, err)
	}

	return store
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()

	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, "message: %s", appErr.Message)

	return appErr
}
