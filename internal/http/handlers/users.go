package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/service"
	"github.com/gin-gonic/gin"
)

type UserManager interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, in service.NewUser) error
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	users UserManager
}

func NewUsersHandler(users UserManager) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondList(ctx, users)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req service.NewUser

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.users.Create(cctx, req); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Successfully created user!")
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		RespondNotFound(ctx, service.MsgUserNotFound)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Successfully deleted user!")
}

// pathID parses a positive integer path parameter. Anything else names a
// record that cannot exist.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
