package user_test

import (
	"testing"

	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		role  string
		want  bool
	}{
		{name: "admin present", roles: []string{"user", "admin"}, role: user.RoleAdmin, want: true},
		{name: "admin absent", roles: []string{"user"}, role: user.RoleAdmin, want: false},
		{name: "no roles", roles: nil, role: user.RoleUser, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := user.User{Name: "sam", Roles: tt.roles}
			assert.Equal(t, tt.want, user.HasRole(u, tt.role))
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, user.User{Roles: []string{"admin"}}.IsAdmin())
	assert.False(t, user.User{Roles: []string{"user"}}.IsAdmin())
}
