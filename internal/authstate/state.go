// internal/authstate/state.go
package authstate

import (
	"context"

	"visrec-admin/internal/domain/auth"
)

// State is a snapshot of one browser session's auth state.
type State struct {
	User      *auth.Identity
	IsAllowed bool
	Loading   bool
}

// Initial is the state before the first sign-in event arrives.
func Initial() State {
	return State{Loading: true}
}

// Authorized reports whether the session may use the admin panel.
func (s State) Authorized() bool {
	return !s.Loading && s.User != nil && s.IsAllowed
}

func (s State) Response() auth.SessionStateResponse {
	return auth.SessionStateResponse{
		User:      s.User,
		IsAllowed: s.IsAllowed,
		Loading:   s.Loading,
	}
}

// Checker decides whether an email is on the allowlist.
type Checker interface {
	IsAllowed(ctx context.Context, email string) bool
}

// EventSource delivers external sign-in changes for a session. fn receives the
// current identity first (nil when signed out), then each change, one at a time.
// The returned func cancels the subscription.
type EventSource interface {
	Watch(ctx context.Context, sessionID string, fn func(*auth.Identity)) (func(), error)
}
