// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"visrec-admin/internal/authstate"
	"visrec-admin/internal/pkg/jwt"
	"visrec-admin/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the signed session token.
const SessionCookie = "visrec_session"

// stateWait bounds how long a request waits for a fresh session to settle.
const stateWait = 3 * time.Second

// SessionValidator is the part of the auth service the middleware needs.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
	SessionState(ctx context.Context, sessionID string, wait time.Duration) authstate.State
}

type AuthMiddleware struct {
	authService SessionValidator
}

func NewAuthMiddleware(authService SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the session token and requires an allowlisted session
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		state := m.authService.SessionState(c.Request.Context(), claims.ID, stateWait)
		if !state.Authorized() {
			response.Forbidden(c, "You are not authorized to access the admin panel.")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the session context when a valid token is present and
// never aborts
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			// Don't abort, just continue without setting user context
			c.Next()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxJTI, claims.ID)
	c.Set(ctxEmail, claims.Email)
}

// extractToken reads the session cookie, then a Bearer header
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
