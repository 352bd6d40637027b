package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
)

type GroupsRepo struct {
	s *Store
}

func (r *GroupsRepo) List(ctx context.Context) ([]group.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]group.Group, 0, len(r.s.groups))
	for _, row := range r.s.groups {
		out = append(out, r.s.toGroup(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *GroupsRepo) NameExists(ctx context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.byName(name) != nil, nil
}

func (r *GroupsRepo) Create(ctx context.Context, name string) (group.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byName(name) != nil {
		return group.Group{}, group.ErrNameTaken
	}

	now := time.Now().UTC()
	r.s.nextGroupID++

	row := &groupRow{id: r.s.nextGroupID, name: name, createdAt: now, updatedAt: now}
	r.s.groups[row.id] = row
	r.s.members[row.id] = make(map[int64]struct{})

	return r.s.toGroup(row), nil
}

func (r *GroupsRepo) AddMember(ctx context.Context, groupID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkPair(groupID, userID); err != nil {
		return err
	}

	ms := r.s.members[groupID]
	if _, ok := ms[userID]; ok {
		return group.ErrAlreadyMember
	}
	ms[userID] = struct{}{}

	return nil
}

func (r *GroupsRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkPair(groupID, userID); err != nil {
		return err
	}

	ms := r.s.members[groupID]
	if _, ok := ms[userID]; !ok {
		return group.ErrNotMember
	}
	delete(ms, userID)

	return nil
}

func (r *GroupsRepo) DeleteIfEmpty(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[id]; !ok {
		return group.ErrNotFound
	}
	if len(r.s.members[id]) > 0 {
		return group.ErrHasMembers
	}

	delete(r.s.groups, id)
	delete(r.s.members, id)

	return nil
}

// MemberCount is used by tests to assert edge counts.
func (r *GroupsRepo) MemberCount(groupID int64) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.members[groupID])
}

// callers hold r.s.mu
func (r *GroupsRepo) checkPair(groupID, userID int64) error {
	if _, ok := r.s.groups[groupID]; !ok {
		return group.ErrNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return user.ErrNotFound
	}
	return nil
}

// callers hold r.s.mu
func (r *GroupsRepo) byName(name string) *groupRow {
	for _, row := range r.s.groups {
		if row.name == name {
			return row
		}
	}
	return nil
}
