// internal/pkg/session/types.go
package session

import (
	"time"

	"visrec-admin/internal/domain/auth"

	"golang.org/x/oauth2"
)

// SessionData is the Redis record behind one signed-in browser.
type SessionData struct {
	JTI            string        `json:"jti"`
	Subject        string        `json:"subject"`
	Email          string        `json:"email"`
	Name           string        `json:"name,omitempty"`
	Picture        string        `json:"picture,omitempty"`
	IPAddress      string        `json:"ip_address"`
	UserAgent      string        `json:"user_agent"`
	Provider       string        `json:"provider"`
	OAuthToken     *oauth2.Token `json:"oauth_token,omitempty"`
	LoginAt        time.Time     `json:"login_at"`
	LastActivityAt time.Time     `json:"last_activity_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

// Identity returns the external identity stored in the session.
func (s *SessionData) Identity() *auth.Identity {
	if s == nil {
		return nil
	}
	return &auth.Identity{
		ID:      s.Subject,
		Email:   s.Email,
		Name:    s.Name,
		Picture: s.Picture,
	}
}

// stateEvent is published on the auth-state channel of a session.
type stateEvent struct {
	Identity *auth.Identity `json:"identity"`
}
