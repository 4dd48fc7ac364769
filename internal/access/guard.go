// Package access decides what a session may see.
//
// It owns the route table, the guard applied to protected routes and the
// memory of where a signed-out user was headed before being sent to login.
package access

import (
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/session"
)

// Outcome is what the guard tells the caller to do
type Outcome int

// Guard outcomes
const (
	Render Outcome = iota
	RedirectToLogin
	RedirectToForbidden
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToForbidden:
		return "redirect_to_forbidden"
	default:
		return "unknown"
	}
}

// Decision is the result of guarding one path.
// From is set only for RedirectToLogin.
type Decision struct {
	Outcome Outcome
	From    string
}

// Decide applies the access rule for a protected path.
//
// A nil allowedRoles admits any authenticated session. An empty, non-nil
// slice admits nobody.
func Decide(state session.State, allowedRoles []domain.Role, requestedPath string) Decision {
	if !state.IsAuthenticated {
		return Decision{Outcome: RedirectToLogin, From: requestedPath}
	}
	if allowedRoles != nil && !roleAllowed(state.User, allowedRoles) {
		return Decision{Outcome: RedirectToForbidden}
	}
	return Decision{Outcome: Render}
}

func roleAllowed(user *domain.User, allowed []domain.Role) bool {
	if user == nil {
		return false
	}
	for _, r := range allowed {
		if r == user.Role {
			return true
		}
	}
	return false
}
