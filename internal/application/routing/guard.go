package routing

import (
	"context"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// Route is the screen a request should land on
type Route string

const (
	RouteAuth       Route = "auth"
	RouteSelectRole Route = "select-role"
	RouteWizard     Route = "wizard"
)

// Decide picks the route for the given session and role
func Decide(authenticated, sessionValid bool, role wizard.Role) Route {
	if !authenticated || !sessionValid {
		return RouteAuth
	}
	if !role.IsSet() {
		return RouteSelectRole
	}
	return RouteWizard
}

// SessionStore is the part of the wizard store the guard needs
type SessionStore interface {
	IsAuthenticated() bool
	IsSessionValid() bool
	CurrentRole() wizard.Role
	ResetWizard(ctx context.Context)
}

// Guard routes the caller, first resetting the wizard when the store still
// claims to be authenticated but the session window has passed.
// The session itself is kept; only re-authentication clears the flag.
func Guard(ctx context.Context, s SessionStore) Route {
	authenticated := s.IsAuthenticated()
	valid := s.IsSessionValid()
	if authenticated && !valid {
		s.ResetWizard(ctx)
	}
	return Decide(authenticated, valid, s.CurrentRole())
}
