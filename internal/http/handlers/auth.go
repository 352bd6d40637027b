package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/roster/internal/http/middlewares"
	"github.com/geocoder89/roster/internal/service"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Authenticate(ctx context.Context, in service.Credentials) (string, error)
	Logout(ctx context.Context, raw string) error
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Authenticate(ctx *gin.Context) {
	var req service.Credentials

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	token, err := h.auth.Authenticate(cctx, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.auth.Logout(cctx, middlewares.BearerToken(ctx)); err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Successfully logged out!")
}
