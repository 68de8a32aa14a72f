// internal/domain/auth/entity.go
package auth

import "time"

// Identity is the external (Google) account behind a session.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// HasEmail reports whether the identity carries a usable email.
func (i *Identity) HasEmail() bool {
	return i != nil && i.Email != ""
}

// AllowlistEntry is one allowlist record, keyed by email.
type AllowlistEntry struct {
	Email     string    `json:"email" db:"email" firestore:"-"`
	Active    any       `json:"active" db:"active" firestore:"active"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at" firestore:"updatedAt,omitempty"`
}

// IsActive is true only when the stored active field is exactly boolean true.
func (e *AllowlistEntry) IsActive() bool {
	if e == nil {
		return false
	}
	active, ok := e.Active.(bool)
	return ok && active
}
