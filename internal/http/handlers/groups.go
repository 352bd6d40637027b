package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/service"
	"github.com/gin-gonic/gin"
)

type GroupManager interface {
	List(ctx context.Context) ([]group.Group, error)
	Create(ctx context.Context, in service.NewGroup) error
	AddUser(ctx context.Context, groupID, userID int64) error
	RemoveUser(ctx context.Context, groupID, userID int64) error
	Delete(ctx context.Context, id int64) error
}

type GroupsHandler struct {
	groups GroupManager
}

func NewGroupsHandler(groups GroupManager) *GroupsHandler {
	return &GroupsHandler{groups: groups}
}

func (h *GroupsHandler) ListGroups(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	groups, err := h.groups.List(cctx)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondList(ctx, groups)
}

func (h *GroupsHandler) CreateGroup(ctx *gin.Context) {
	var req service.NewGroup

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.groups.Create(cctx, req); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Successfully created group!")
}

func (h *GroupsHandler) AddUser(ctx *gin.Context) {
	groupID, userID, ok := membershipIDs(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.groups.AddUser(cctx, groupID, userID); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Successfully added user to group!")
}

func (h *GroupsHandler) RemoveUser(ctx *gin.Context) {
	groupID, userID, ok := membershipIDs(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.groups.RemoveUser(cctx, groupID, userID); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Successfully removed user from group!")
}

func (h *GroupsHandler) DeleteGroup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		RespondNotFound(ctx, service.MsgGroupNotFound)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.groups.Delete(cctx, id); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Successfully deleted group!")
}

func membershipIDs(ctx *gin.Context) (int64, int64, bool) {
	groupID, okGroup := pathID(ctx, "gid")
	userID, okUser := pathID(ctx, "uid")

	if !okGroup || !okUser {
		RespondNotFound(ctx, service.MsgGroupOrUserMissing)
		return 0, 0, false
	}

	return groupID, userID, true
}
