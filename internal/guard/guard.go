// Package guard decides whether a role-protected dashboard may be rendered.
package guard

import (
	"strings"

	"github.com/skillvault/skillvault-service/internal/models"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/login"

// Decision is the outcome of evaluating a guarded route.
type Decision int

const (
	// Loading means the session is not resolved yet; render a placeholder, do not redirect.
	Loading Decision = iota
	// RedirectLogin sends the caller to the login page.
	RedirectLogin
	// RedirectHome sends an authenticated caller to their own role home.
	RedirectHome
	// Render shows the protected content.
	Render
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Render:
		return "render"
	}
	return "unknown"
}

// State is the session snapshot the guard evaluates.
type State struct {
	User      *models.User `json:"user"`
	IsLoading bool         `json:"is_loading"`
}

// RoleSet is the set of roles allowed on a route.
type RoleSet map[models.UserRole]struct{}

// Roles builds a RoleSet.
func Roles(roles ...models.UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether role is in the set.
func (s RoleSet) Allows(role models.UserRole) bool {
	_, ok := s[role]
	return ok
}

// Decide evaluates a guarded route. Content renders only for an authenticated user whose role is allowed.
func Decide(state State, allowed RoleSet) Decision {
	if state.IsLoading {
		return Loading
	}
	if state.User == nil {
		return RedirectLogin
	}
	if !allowed.Allows(state.User.Role) {
		return RedirectHome
	}
	return Render
}

// Target returns the redirect location for a decision, or "" when nothing should happen.
func Target(d Decision, state State) string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectHome:
		return state.User.Role.HomePath()
	}
	return ""
}

// RolesForPath derives the allowed roles from a /dashboard/<role>[/...] path.
// ok is false when the path is not a role dashboard.
func RolesForPath(path string) (RoleSet, bool) {
	rest, found := strings.CutPrefix(path, "/dashboard/")
	if !found {
		return nil, false
	}
	segment, _, _ := strings.Cut(rest, "/")
	role := models.UserRole(segment)
	if !role.IsValid() {
		return nil, false
	}
	return Roles(role), true
}
