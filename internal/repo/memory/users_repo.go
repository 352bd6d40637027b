package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/roster/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, row := range r.s.users {
		out = append(out, r.s.toUser(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.s.toUser(row), nil
}

func (r *UsersRepo) GetByName(ctx context.Context, name string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.byName(name)
	if row == nil {
		return user.User{}, user.ErrNotFound
	}
	return r.s.toUser(row), nil
}

func (r *UsersRepo) NameExists(ctx context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.byName(name) != nil, nil
}

func (r *UsersRepo) Create(ctx context.Context, name, passwordHash, role string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byName(name) != nil {
		return user.User{}, user.ErrNameTaken
	}

	now := time.Now().UTC()
	r.s.nextUserID++

	row := &userRow{
		id:           r.s.nextUserID,
		name:         name,
		passwordHash: passwordHash,
		roles:        map[string]struct{}{role: {}},
		createdAt:    now,
		updatedAt:    now,
	}
	r.s.users[row.id] = row

	return r.s.toUser(row), nil
}

func (r *UsersRepo) DeleteUnlessRole(ctx context.Context, id int64, protectedRole string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	if _, protected := row.roles[protectedRole]; protected {
		return user.ErrProtected
	}

	delete(r.s.users, id)
	for _, ms := range r.s.members {
		delete(ms, id)
	}

	return nil
}

// callers hold r.s.mu
func (r *UsersRepo) byName(name string) *userRow {
	for _, row := range r.s.users {
		if row.name == name {
			return row
		}
	}
	return nil
}
