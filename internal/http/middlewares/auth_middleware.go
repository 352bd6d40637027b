package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/roster/internal/actorctx"
	"github.com/geocoder89/roster/internal/auth"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenResolver interface {
	Resolve(ctx context.Context, raw string) (user.User, error)
}

type AuthMiddleware struct {
	tokens TokenResolver
	prom   *observability.Prom
}

func NewAuthMiddleware(tokens TokenResolver, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, prom: prom}
}

// RequireAuth resolves the bearer token to a user and puts it on the request
// context. Callers that asked for JSON get 401; everyone else lands on the
// unauthorized fallback.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			m.prom.ObserveAuth("missing")
			deny(c)
			return
		}

		u, err := m.tokens.Resolve(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				m.prom.ObserveAuth("invalid")
				deny(c)
				return
			}

			m.prom.ObserveAuth("error")
			slog.Default().ErrorContext(c.Request.Context(), "token resolve failed", "err", err)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "Server Error")
			return
		}

		m.prom.ObserveAuth("ok")

		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), u))
		c.Set(CtxUser, u)

		c.Next()
	}
}

// BearerToken returns the token from "Authorization: Bearer <token>", or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// WantsJSON reports whether the client asked for a JSON answer, either through
// Accept or as an XMLHttpRequest that accepts anything.
func WantsJSON(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	if strings.Contains(accept, "/json") || strings.Contains(accept, "+json") {
		return true
	}

	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return accept == "" || strings.Contains(accept, "*/*")
	}

	return false
}

func deny(c *gin.Context) {
	if WantsJSON(c) {
		abortJSON(c, http.StatusUnauthorized, "unauthenticated", msgUnauthenticated)
		return
	}

	Unauthorized(c)
}

// UserFromContext returns the caller RequireAuth resolved.
func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
