// internal/domain/auth/dto.go
package auth

import "time"

// SignInMeta describes the browser completing a sign-in.
type SignInMeta struct {
	IPAddress string
	UserAgent string
}

// SignInResult is returned by a successful interactive sign-in.
type SignInResult struct {
	Token     string    `json:"-"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Identity  `json:"user"`
}

// SessionStateResponse is the wire form of the auth state of one browser session.
type SessionStateResponse struct {
	User      *Identity `json:"user"`
	IsAllowed bool      `json:"isAllowed"`
	Loading   bool      `json:"loading"`
}
