package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/security"
)

type SeedUsers interface {
	GetByName(ctx context.Context, name string) (user.User, error)
	Create(ctx context.Context, name, passwordHash, role string) (user.User, error)
}

type SeedGroups interface {
	List(ctx context.Context) ([]group.Group, error)
	Create(ctx context.Context, name string) (group.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
}

const (
	demoUserName     = "user"
	demoUserPassword = "user_password"
	demoGroupCount   = 10
)

// EnsureAdmin creates the admin account when it does not exist yet. An empty
// password disables it.
func EnsureAdmin(ctx context.Context, users SeedUsers, name, password string, log *slog.Logger) error {
	if name == "" || password == "" {
		return nil
	}

	_, err := ensureUser(ctx, users, name, password, user.RoleAdmin, log)
	return err
}

// SeedDemo adds a regular user, ten groups and one membership. Running it
// again leaves existing rows alone.
func SeedDemo(ctx context.Context, users SeedUsers, groups SeedGroups, log *slog.Logger) error {
	u, err := ensureUser(ctx, users, demoUserName, demoUserPassword, user.RoleUser, log)
	if err != nil {
		return err
	}

	existing, err := groups.List(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	byName := make(map[string]group.Group, len(existing))
	for _, g := range existing {
		byName[g.Name] = g
	}

	var first group.Group
	for i := 1; i <= demoGroupCount; i++ {
		name := fmt.Sprintf("Group %d", i)

		g, ok := byName[name]
		if !ok {
			g, err = ensureGroup(ctx, groups, name, log)
			if err != nil {
				return err
			}
		}

		if i == 1 {
			first = g
		}
	}

	err = groups.AddMember(ctx, first.ID, u.ID)
	if err != nil && !errors.Is(err, group.ErrAlreadyMember) {
		return fmt.Errorf("add %s to %s: %w", u.Name, first.Name, err)
	}

	return nil
}

// ensureGroup creates name, or reads it back when another seeder created it
// first.
func ensureGroup(ctx context.Context, groups SeedGroups, name string, log *slog.Logger) (group.Group, error) {
	g, err := groups.Create(ctx, name)
	if err == nil {
		log.InfoContext(ctx, "seeded group", "group_id", g.ID, "name", name)
		return g, nil
	}
	if !errors.Is(err, group.ErrNameTaken) {
		return group.Group{}, fmt.Errorf("create %s: %w", name, err)
	}

	existing, err := groups.List(ctx)
	if err != nil {
		return group.Group{}, fmt.Errorf("list groups: %w", err)
	}
	for _, g := range existing {
		if g.Name == name {
			return g, nil
		}
	}

	return group.Group{}, fmt.Errorf("create %s: %w", name, group.ErrNotFound)
}

func ensureUser(ctx context.Context, users SeedUsers, name, password, role string, log *slog.Logger) (user.User, error) {
	u, err := users.GetByName(ctx, name)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, fmt.Errorf("lookup %s: %w", name, err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	u, err = users.Create(ctx, name, hash, role)
	if err != nil {
		if errors.Is(err, user.ErrNameTaken) {
			return users.GetByName(ctx, name)
		}
		return user.User{}, fmt.Errorf("create %s: %w", name, err)
	}

	log.InfoContext(ctx, "seeded user", "user_id", u.ID, "name", name, "role", role)

	return u, nil
}
