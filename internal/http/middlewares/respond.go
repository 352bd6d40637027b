package middlewares

import "github.com/gin-gonic/gin"

const (
	msgUnauthenticated = "Unauthenticated."
	msgNotAuthorized   = "You are not authorized to access this resource"
)

// abortJSON writes the same error envelope the handlers use.
func abortJSON(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"message": message,
		"code":    code,
	}
	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
