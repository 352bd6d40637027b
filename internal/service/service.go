// Package service implements the authentication, user management and group
// management flows on top of the credential, group and token stores.
package service

import (
	"context"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
)

// UserStore is the credential store. Create attaches role to the new user in
// the same write; DeleteUnlessRole checks and deletes atomically.
type UserStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByName(ctx context.Context, name string) (user.User, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name, passwordHash, role string) (user.User, error)
	DeleteUnlessRole(ctx context.Context, id int64, protectedRole string) error
}

// GroupStore is the group store. Membership changes and deletes run their
// existence checks and the write as one atomic unit.
type GroupStore interface {
	List(ctx context.Context) ([]group.Group, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (group.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	DeleteIfEmpty(ctx context.Context, id int64) error
}

type TokenIssuer interface {
	Issue(ctx context.Context, u user.User) (string, error)
	Revoke(ctx context.Context, raw string) error
}

const (
	MsgInvalidLogin       = "Invalid login details"
	MsgNotAuthorized      = "You are not authorized to access this resource"
	MsgUserNotFound       = "User not found!"
	MsgCannotDeleteUser   = "You are not authorized to delete this user!"
	MsgGroupNotFound      = "Group not found!"
	MsgGroupOrUserMissing = "Group or user not found!"
	MsgAlreadyInGroup     = "User already in group!"
	MsgNotInGroup         = "User not in group!"
	MsgGroupHasUsers      = "Group has users!"
)
