// Package guard implements the navigation-time checks in front of protected
// and guest-only areas. Guards only read session state and call the
// coordinator's own recovery method; they never trigger a refresh directly,
// which keeps the single-flight invariant inside the coordinator.
//
// Every guard resolves deterministically: either immediately, or after the
// one network round trip an auto-login attempt costs.
package guard

import (
	"context"

	"github.com/jobtrackr/jobtrackr-go/internal/client/session"
)

// Session is the slice of the coordinator the guards need.
type Session interface {
	State() session.State
	CheckAuthStatus(ctx context.Context) bool
	AutoLogin(ctx context.Context) error
}

// Decision is a guard verdict: allow the navigation, or redirect.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(path string) Decision {
	return Decision{RedirectTo: path}
}

// Auth protects private routes. An authenticated session passes through;
// with only a marker present, one silent auto-login is attempted; with
// neither, the guard denies synchronously without any network call.
func Auth(ctx context.Context, s Session) Decision {
	if s.State().IsAuthenticated {
		return allow()
	}

	if s.CheckAuthStatus(ctx) {
		if err := s.AutoLogin(ctx); err == nil {
			return allow()
		}
		return redirect(session.PathSignIn)
	}

	return redirect(session.PathSignIn)
}

// Guest protects the sign-in/sign-up routes from already authenticated
// users: those are sent to the dashboard, after the same silent recovery
// attempt Auth makes.
func Guest(ctx context.Context, s Session) Decision {
	if s.State().IsAuthenticated {
		return redirect(session.PathDashboard)
	}

	if s.CheckAuthStatus(ctx) {
		if err := s.AutoLogin(ctx); err == nil {
			return redirect(session.PathDashboard)
		}
		return allow()
	}

	return allow()
}

// AuthMatch mirrors Auth for lazy-route matching, where route existence
// itself depends on the session: it answers yes/no instead of redirecting.
func AuthMatch(ctx context.Context, s Session) bool {
	if s.State().IsAuthenticated {
		return true
	}

	if s.CheckAuthStatus(ctx) {
		return s.AutoLogin(ctx) == nil
	}

	return false
}
