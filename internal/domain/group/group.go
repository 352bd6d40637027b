package group

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("group not found")
	ErrNameTaken     = errors.New("group name already taken")
	ErrAlreadyMember = errors.New("user already in group")
	ErrNotMember     = errors.New("user not in group")
	ErrHasMembers    = errors.New("group has members")
)

type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Users     []string  `json:"users"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
