// Package memory is an in-process implementation of the user and group
// stores. All operations on one Store are serialized by a single lock, which
// makes every check-then-write atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
)

type userRow struct {
	id           int64
	name         string
	passwordHash string
	roles        map[string]struct{}
	createdAt    time.Time
	updatedAt    time.Time
}

type groupRow struct {
	id        int64
	name      string
	createdAt time.Time
	updatedAt time.Time
}

type Store struct {
	mu          sync.RWMutex
	nextUserID  int64
	nextGroupID int64
	users       map[int64]*userRow
	groups      map[int64]*groupRow
	// members is keyed by group id, then user id
	members map[int64]map[int64]struct{}
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int64]*userRow),
		groups:  make(map[int64]*groupRow),
		members: make(map[int64]map[int64]struct{}),
	}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{s: s}
}

func (s *Store) Groups() *GroupsRepo {
	return &GroupsRepo{s: s}
}

// Ping always succeeds; it lets the store stand in for a database in health checks.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// callers hold s.mu
func (s *Store) userGroups(userID int64) []string {
	ids := make([]int64, 0)
	for gid, ms := range s.members {
		if _, ok := ms[userID]; ok {
			ids = append(ids, gid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, 0, len(ids))
	for _, gid := range ids {
		names = append(names, s.groups[gid].name)
	}
	return names
}

// callers hold s.mu
func (s *Store) toUser(r *userRow) user.User {
	roles := make([]string, 0, len(r.roles))
	for role := range r.roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	return user.User{
		ID:           r.id,
		Name:         r.name,
		PasswordHash: r.passwordHash,
		Roles:        roles,
		Groups:       s.userGroups(r.id),
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}
}

// callers hold s.mu
func (s *Store) toGroup(r *groupRow) group.Group {
	ids := make([]int64, 0, len(s.members[r.id]))
	for uid := range s.members[r.id] {
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, 0, len(ids))
	for _, uid := range ids {
		names = append(names, s.users[uid].name)
	}

	return group.Group{
		ID:        r.id,
		Name:      r.name,
		Users:     names,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}
