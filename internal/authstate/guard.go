// internal/authstate/guard.go
package authstate

import "strings"

const LoginPath = "/admin/login"

type Decision struct {
	Redirect bool
	Location string
}

// Decide runs before each page navigation. While the state is loading the
// navigation always proceeds; otherwise a missing or disallowed user is sent to
// the login page. The login page itself is never guarded.
func Decide(path, loginPath string, s State) Decision {
	if loginPath == "" {
		loginPath = LoginPath
	}
	if path == loginPath || strings.HasPrefix(path, loginPath+"/") {
		return Decision{}
	}
	if s.Loading {
		return Decision{}
	}
	if s.User == nil || !s.IsAllowed {
		return Decision{Redirect: true, Location: loginPath}
	}
	return Decision{}
}
