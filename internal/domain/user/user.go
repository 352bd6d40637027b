package user

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrNameTaken = errors.New("user name already taken")
	// ErrProtected is returned when a delete targets a user holding a protected role.
	ErrProtected = errors.New("user holds a protected role")
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Roles        []string  `json:"roles"`
	Groups       []string  `json:"groups"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the role set of u contains role.
func HasRole(u User, role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool {
	return HasRole(u, RoleAdmin)
}
