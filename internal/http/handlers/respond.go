package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message   string        `json:"message"`
	Code      string        `json:"code"`
	RequestID string        `json:"requestId,omitempty"`
	Errors    apperr.Fields `json:"errors,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, fields apperr.Fields) {
	ctx.JSON(status, APIError{
		Message:   message,
		Code:      code,
		RequestID: requestIDFrom(ctx),
		Errors:    fields,
	})
}

// RespondAppError renders err with the status of its kind. Internal errors are
// logged and answered with a generic message.
func RespondAppError(ctx *gin.Context, err error) {
	appErr := apperr.As(err)

	if appErr.Kind == apperr.KindInternal {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
		)
	}

	RespondError(ctx, appErr.Kind.Status(), string(appErr.Kind), appErr.Message, appErr.Fields)
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, string(apperr.KindNotFound), message, nil)
}
