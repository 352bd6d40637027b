package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_Admin(t *testing.T) {
	store := seedStore(t)
	tokens := &fakeTokens{}
	svc := service.NewAuthService(store.Users(), tokens, discardLogger())

	token, err := svc.Authenticate(context.Background(), service.Credentials{Name: "admin", Password: "admin_password"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-admin", token)
	assert.Len(t, tokens.issued, 1)
}

func TestAuthenticate_EveryCallIssuesToken(t *testing.T) {
	store := seedStore(t)
	tokens := &fakeTokens{}
	svc := service.NewAuthService(store.Users(), tokens, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := svc.Authenticate(context.Background(), service.Credentials{Name: "admin", Password: "admin_password"})
		require.NoError(t, err)
	}
	assert.Len(t, tokens.issued, 2)
}

func TestAuthenticate_Failures(t *testing.T) {
	store := seedStore(t)

	tests := []struct {
		name       string
		in         service.Credentials
		wantKind   apperr.Kind
		wantMsg    string
		wantFields map[string][]string
	}{
		{
			name:     "wrong password",
			in:       service.Credentials{Name: "admin", Password: "wrong_password"},
			wantKind: apperr.KindInvalidCredentials,
			wantMsg:  "Invalid login details",
		},
		{
			name:     "unknown user",
			in:       service.Credentials{Name: "wrong_name", Password: "admin_password"},
			wantKind: apperr.KindInvalidCredentials,
			wantMsg:  "Invalid login details",
		},
		{
			name:     "not an admin",
			in:       service.Credentials{Name: "user", Password: "user_password"},
			wantKind: apperr.KindForbidden,
			wantMsg:  "You are not authorized to access this resource",
		},
		{
			name:       "missing password",
			in:         service.Credentials{Name: "name"},
			wantKind:   apperr.KindValidation,
			wantFields: map[string][]string{"password": {"The password field is required."}},
		},
		{
			name:       "missing name",
			in:         service.Credentials{Password: "password"},
			wantKind:   apperr.KindValidation,
			wantFields: map[string][]string{"name": {"The name field is required."}},
		},
		{
			name:       "blank name",
			in:         service.Credentials{Name: "   ", Password: "password"},
			wantKind:   apperr.KindValidation,
			wantFields: map[string][]string{"name": {"The name field is required."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokens{}
			svc := service.NewAuthService(store.Users(), tokens, discardLogger())

			_, err := svc.Authenticate(context.Background(), tt.in)
			appErr := requireKind(t, err, tt.wantKind)

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
			for field, msgs := range tt.wantFields {
				assert.Equal(t, msgs, appErr.Fields[field])
			}
			assert.Empty(t, tokens.issued, "no token may be issued on failure")
		})
	}
}

func TestAuthenticate_TokenFailureIsInternal(t *testing.T) {
	store := seedStore(t)
	tokens := &fakeTokens{issueFn: func(ctx context.Context, u user.User) (string, error) {
		return "", errors.New("registry down")
	}}
	svc := service.NewAuthService(store.Users(), tokens, discardLogger())

	_, err := svc.Authenticate(context.Background(), service.Credentials{Name: "admin", Password: "admin_password"})
	appErr := requireKind(t, err, apperr.KindInternal)
	assert.Equal(t, "Server Error", appErr.Message)
}

func TestLogout(t *testing.T) {
	var revoked string
	tokens := &fakeTokens{revokeFn: func(ctx context.Context, raw string) error {
		revoked = raw
		return nil
	}}
	svc := service.NewAuthService(seedStore(t).Users(), tokens, discardLogger())

	require.NoError(t, svc.Logout(context.Background(), "abc"))
	assert.Equal(t, "abc", revoked)

	tokens.revokeFn = func(ctx context.Context, raw string) error { return errors.New("down") }
	requireKind(t, svc.Logout(context.Background(), "abc"), apperr.KindInternal)
}
