// internal/middleware/route_guard.go
package middleware

import (
	"net/http"

	"visrec-admin/internal/authstate"

	"github.com/gin-gonic/gin"
)

// RouteGuard redirects page navigations without an allowed session to the
// login page. It must run after OptionalAuth.
func (m *AuthMiddleware) RouteGuard(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := authstate.State{}
		if jti, ok := GetJTI(c); ok {
			state = m.authService.SessionState(c.Request.Context(), jti, stateWait)
		}

		decision := authstate.Decide(c.Request.URL.Path, loginPath, state)
		if decision.Redirect {
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}

		c.Next()
	}
}
