package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geocoder89/roster/internal/actorctx"
	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/security"
)

type NewUser struct {
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type UserService struct {
	users UserStore
	log   *slog.Logger
}

func NewUserService(users UserStore, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// Create stores a new user with a hashed password and the default role.
func (s *UserService) Create(ctx context.Context, in NewUser) error {
	in.Name = strings.TrimSpace(in.Name)

	fields, err := validateInput(in)
	if err != nil {
		return apperr.Internal(err)
	}

	if !fields.Has("name") {
		exists, err := s.users.NameExists(ctx, in.Name)
		if err != nil {
			return apperr.Internal(err)
		}
		if exists {
			fields.Add("name", takenMessage("name"))
		}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields, "name", "password")
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return apperr.Internal(err)
	}

	u, err := s.users.Create(ctx, in.Name, hash, user.RoleUser)
	if err != nil {
		if errors.Is(err, user.ErrNameTaken) {
			taken := apperr.Fields{}
			taken.Add("name", takenMessage("name"))
			return apperr.Validation(taken, "name")
		}
		return apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "actor_id", actorctx.UserIDFrom(ctx))

	return nil
}

// Delete removes a user and its role and group edges. Admins are never
// deleted.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.users.DeleteUnlessRole(ctx, id, user.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			return apperr.NotFound(MsgUserNotFound)
		case errors.Is(err, user.ErrProtected):
			return apperr.Forbidden(MsgCannotDeleteUser)
		default:
			return apperr.Internal(err)
		}
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id, "actor_id", actorctx.UserIDFrom(ctx))

	return nil
}
