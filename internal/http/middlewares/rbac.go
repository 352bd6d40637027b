package middlewares

import (
	"net/http"

	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when the resolved caller holds
// role. It must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			deny(c)
			return
		}

		if !user.HasRole(u, role) {
			Unauthorized(c)
			return
		}

		c.Next()
	}
}

// Unauthorized is the terminal fallback for callers that failed the auth
// check without asking for JSON, and for callers missing the required role.
func Unauthorized(c *gin.Context) {
	abortJSON(c, http.StatusForbidden, "forbidden", msgNotAuthorized)
}
