// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

const (
	ctxJTI   = "jti"
	ctxEmail = "email"
)

// GetJTI returns the session id set by the auth middleware
func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}

	jtiStr, ok := jti.(string)
	return jtiStr, ok
}

// GetEmail returns the signed-in email, or "" for anonymous requests
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}
