package authstate

import (
	"testing"

	"visrec-admin/internal/domain/auth"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	user := &auth.Identity{ID: "1", Email: "a@example.com"}

	tests := []struct {
		name     string
		path     string
		state    State
		redirect bool
	}{
		{"loading without user", "/admin", State{Loading: true}, false},
		{"loading with disallowed user", "/admin/posts", State{User: user, Loading: true}, false},
		{"no user", "/admin", State{}, true},
		{"user not allowed", "/admin/translations", State{User: user}, true},
		{"allowed", "/admin/translations", State{User: user, IsAllowed: true}, false},
		{"login page exempt", "/admin/login", State{}, false},
		{"login assets exempt", "/admin/login/app.js", State{}, false},
		{"login lookalike guarded", "/admin/login-x/page", State{}, true},
		{"login in a nested path guarded", "/admin/posts/admin/login", State{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.path, "", tt.state)
			assert.Equal(t, tt.redirect, d.Redirect)
			if tt.redirect {
				assert.Equal(t, LoginPath, d.Location)
			} else {
				assert.Empty(t, d.Location)
			}
		})
	}
}
