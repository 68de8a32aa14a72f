// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

const PurposeAdminSession = "admin_session"

// Claims represents the JWT claims of an admin session cookie
type Claims struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	SessionPurpose string `json:"session_purpose"`
	jwt.RegisteredClaims
}
