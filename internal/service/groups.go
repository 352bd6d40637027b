package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geocoder89/roster/internal/actorctx"
	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
)

type NewGroup struct {
	Name string `json:"name" validate:"required,max=255"`
}

type GroupService struct {
	groups GroupStore
	log    *slog.Logger
}

func NewGroupService(groups GroupStore, log *slog.Logger) *GroupService {
	if log == nil {
		log = slog.Default()
	}
	return &GroupService{groups: groups, log: log}
}

func (s *GroupService) List(ctx context.Context) ([]group.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return groups, nil
}

func (s *GroupService) Create(ctx context.Context, in NewGroup) error {
	in.Name = strings.TrimSpace(in.Name)

	fields, err := validateInput(in)
	if err != nil {
		return apperr.Internal(err)
	}

	if !fields.Has("name") {
		exists, err := s.groups.NameExists(ctx, in.Name)
		if err != nil {
			return apperr.Internal(err)
		}
		if exists {
			fields.Add("name", takenMessage("name"))
		}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields, "name")
	}

	g, err := s.groups.Create(ctx, in.Name)
	if err != nil {
		if errors.Is(err, group.ErrNameTaken) {
			taken := apperr.Fields{}
			taken.Add("name", takenMessage("name"))
			return apperr.Validation(taken, "name")
		}
		return apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "group created", "group_id", g.ID, "actor_id", actorctx.UserIDFrom(ctx))

	return nil
}

func (s *GroupService) AddUser(ctx context.Context, groupID, userID int64) error {
	err := s.groups.AddMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, group.ErrAlreadyMember) {
			return apperr.Conflict(MsgAlreadyInGroup)
		}
		return s.membershipError(ctx, err, groupID, userID)
	}

	s.log.InfoContext(ctx, "user added to group", "group_id", groupID, "user_id", userID, "actor_id", actorctx.UserIDFrom(ctx))

	return nil
}

func (s *GroupService) RemoveUser(ctx context.Context, groupID, userID int64) error {
	err := s.groups.RemoveMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, group.ErrNotMember) {
			return apperr.Conflict(MsgNotInGroup)
		}
		return s.membershipError(ctx, err, groupID, userID)
	}

	s.log.InfoContext(ctx, "user removed from group", "group_id", groupID, "user_id", userID, "actor_id", actorctx.UserIDFrom(ctx))

	return nil
}

// membershipError reports a missing group and a missing user with the same
// message; the log keeps which one it was.
func (s *GroupService) membershipError(ctx context.Context, err error, groupID, userID int64) error {
	switch {
	case errors.Is(err, group.ErrNotFound), errors.Is(err, user.ErrNotFound):
		s.log.DebugContext(ctx, "membership target missing", "group_id", groupID, "user_id", userID, "err", err)
		return apperr.NotFound(MsgGroupOrUserMissing)
	default:
		return apperr.Internal(err)
	}
}

func (s *GroupService) Delete(ctx context.Context, id int64) error {
	err := s.groups.DeleteIfEmpty(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrNotFound):
			return apperr.NotFound(MsgGroupNotFound)
		case errors.Is(err, group.ErrHasMembers):
			return apperr.Conflict(MsgGroupHasUsers)
		default:
			return apperr.Internal(err)
		}
	}

	s.log.InfoContext(ctx, "group deleted", "group_id", id, "actor_id", actorctx.UserIDFrom(ctx))

	return nil
}
