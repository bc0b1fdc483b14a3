// Package session maintains the client-side authentication state machine:
// sign-in, sign-up with email verification, sign-out, silent token refresh
// and auto-login, with a single-flight guarantee on the refresh path.
//
// The package owns all mutation of the auth state. UI code, guards and the
// HTTP transport only read State and call Coordinator methods; they never
// touch the token store or the marker directly.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jobtrackr/jobtrackr-go/internal/client/api"
	"github.com/jobtrackr/jobtrackr-go/internal/client/repositories/marker"
	"github.com/jobtrackr/jobtrackr-go/internal/logging"
)

// Routes the coordinator asks the navigator to move to.
const (
	PathDashboard = "/dashboard"
	PathSignIn    = "/auth/signin"
)

// Flight keys for the single-flight group.
const (
	flightRefresh   = "refresh"
	flightAutoLogin = "auto-login"
)

// Navigator receives navigation side effects (to the dashboard after a
// successful sign-in, to the sign-in page after session loss). The router
// is an external collaborator; the default navigator does nothing.
type Navigator interface {
	NavigateTo(path string)
}

type nopNavigator struct{}

func (nopNavigator) NavigateTo(string) {}

// Coordinator orchestrates the session lifecycle. It is the single writer
// of the StateStore and the TokenStore, and the only component allowed to
// call the backend's refresh endpoint.
type Coordinator struct {
	api    api.Client
	tokens *TokenStore
	state  *StateStore
	marker marker.Repository
	nav    Navigator
	log    logging.Logger

	// flight deduplicates concurrent refresh and auto-login attempts:
	// N concurrent callers share one backend call and one outcome.
	flight singleflight.Group
}

// Option configures optional collaborators.
type Option func(*Coordinator)

func WithNavigator(n Navigator) Option {
	return func(c *Coordinator) { c.nav = n }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// NewCoordinator wires a coordinator over its collaborators. Nothing is
// read from storage yet; call Restore at startup to rehydrate the state
// from a previously persisted marker.
func NewCoordinator(client api.Client, tokens *TokenStore, state *StateStore, markers marker.Repository, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:    client,
		tokens: tokens,
		state:  state,
		marker: markers,
		nav:    nopNavigator{},
		log:    logging.NewSlogLogger(slog.Default()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current auth state.
func (c *Coordinator) State() State {
	return c.state.Get()
}

// Subscribe registers a listener for state changes. See StateStore.Subscribe.
func (c *Coordinator) Subscribe(fn func(State)) (cancel func()) {
	return c.state.Subscribe(fn)
}

// Restore initializes the auth state from the persisted marker, typically
// once at process start. A cached user is rehydrated into State.User but
// the session stays unauthenticated until a refresh succeeds.
func (c *Coordinator) Restore(ctx context.Context) error {
	rec, err := c.marker.Get(ctx)
	if err != nil {
		return err
	}

	if rec == nil {
		c.tokens.Clear()
		c.state.Update(func(State) State { return State{} })
		return nil
	}

	user := rec.User
	c.state.Update(func(s State) State {
		s.IsAuthenticated = false
		s.User = &user
		s.Token = ""
		return s
	})
	return nil
}

// SignIn authenticates with the backend. On success the access token is
// stored in memory, the marker is persisted and the state flips to
// authenticated; on failure the state carries a user-facing error message.
// Exactly one network call, never retried.
func (c *Coordinator) SignIn(ctx context.Context, creds api.LoginRequest) (*api.User, error) {
	c.begin()

	resp, err := c.api.Login(ctx, creds)
	if err != nil {
		c.failAuth(ctx, err)
		return nil, err
	}

	c.establish(ctx, resp.User, resp.AccessToken)
	c.log.Info(ctx, "signed in", "user_id", resp.User.ID)
	c.nav.NavigateTo(PathDashboard)
	return &resp.User, nil
}

// SignUp registers a new account. The backend answers with a
// verification-pending acknowledgement: the user is NOT authenticated until
// VerifyRegistration succeeds.
func (c *Coordinator) SignUp(ctx context.Context, userData api.RegisterRequest) (*api.RegistrationResponse, error) {
	c.begin()

	resp, err := c.api.Register(ctx, userData)
	if err != nil {
		c.failAuth(ctx, err)
		return nil, err
	}

	c.settle()
	return resp, nil
}

// VerifyRegistration completes a pending registration with the emailed
// code. Same shape and side effects as SignIn.
func (c *Coordinator) VerifyRegistration(ctx context.Context, email, code string) (*api.User, error) {
	c.begin()

	resp, err := c.api.VerifyRegistration(ctx, api.VerifyRegistrationRequest{Email: email, Code: code})
	if err != nil {
		c.failAuth(ctx, err)
		return nil, err
	}

	c.establish(ctx, resp.User, resp.AccessToken)
	c.log.Info(ctx, "registration verified", "user_id", resp.User.ID)
	c.nav.NavigateTo(PathDashboard)
	return &resp.User, nil
}

// ResendVerificationCode asks the backend to email a fresh code. Cooldown
// between resends is enforced by the caller, not here.
func (c *Coordinator) ResendVerificationCode(ctx context.Context, email string) (string, error) {
	c.begin()

	resp, err := c.api.ResendVerification(ctx, email)
	if err != nil {
		c.failAuth(ctx, err)
		return "", err
	}

	c.settle()
	return resp.Message, nil
}

// ForgotPassword requests a password-reset email. Success does not
// authenticate.
func (c *Coordinator) ForgotPassword(ctx context.Context, email string) (string, error) {
	c.begin()

	resp, err := c.api.ForgotPassword(ctx, email)
	if err != nil {
		c.failAuth(ctx, err)
		return "", err
	}

	c.settle()
	return resp.Message, nil
}

// ResetPassword sets a new password using a reset token from the email.
func (c *Coordinator) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (string, error) {
	c.begin()

	resp, err := c.api.ResetPassword(ctx, req)
	if err != nil {
		c.failAuth(ctx, err)
		return "", err
	}

	c.settle()
	return resp.Message, nil
}

// Refresh exchanges the refresh cookie for a new access token.
//
// Concurrent callers share one in-flight attempt and its outcome. Without a
// marker the call fails fast with api.ErrNoSession and no network traffic.
// On success only the token changes; identity fields are untouched. On
// failure the whole session state is cleared.
func (c *Coordinator) Refresh(ctx context.Context) error {
	_, err, _ := c.flight.Do(flightRefresh, func() (any, error) {
		// The flight's outcome is shared; a single caller's cancellation
		// must not abort it for everyone else.
		ctx := context.WithoutCancel(ctx)

		rec, err := c.marker.Get(ctx)
		if err != nil {
			c.log.Warn(ctx, "session marker unreadable", "error", err)
		}
		if rec == nil {
			c.clearSession(ctx)
			return nil, api.ErrNoSession
		}

		c.state.Update(func(s State) State {
			s.IsLoading = true
			return s
		})

		resp, err := c.api.Refresh(ctx)
		if err != nil {
			c.log.Warn(ctx, "token refresh failed", "error", err)
			c.clearSession(ctx)
			c.nav.NavigateTo(PathSignIn)
			return nil, err
		}

		c.tokens.Set(resp.AccessToken)
		c.state.Update(func(s State) State {
			s.Token = resp.AccessToken
			s.IsLoading = false
			return s
		})
		return nil, nil
	})
	return err
}

// AutoLogin silently restores a full authenticated session: refresh the
// token, rehydrate the user from the marker, flip to authenticated. Both
// parts must succeed; otherwise the session is cleared and an error is
// returned. Single-flight like Refresh.
func (c *Coordinator) AutoLogin(ctx context.Context) error {
	_, err, _ := c.flight.Do(flightAutoLogin, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		rec, err := c.marker.Get(ctx)
		if err != nil || rec == nil {
			return nil, api.ErrNoSession
		}

		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}

		// Re-read: a concurrent failure path may have cleared the marker.
		rec, err = c.marker.Get(ctx)
		if err != nil || rec == nil {
			c.clearSession(ctx)
			return nil, api.ErrNoSession
		}

		user := rec.User
		token := c.tokens.Get()
		c.state.Update(func(s State) State {
			s.IsAuthenticated = true
			s.User = &user
			s.Token = token
			s.IsLoading = false
			return s
		})
		c.log.Info(ctx, "session restored", "user_id", user.ID)
		return nil, nil
	})
	return err
}

// SignOut invalidates the session server-side on a best-effort basis and
// unconditionally clears all local session state. Idempotent; a failed
// backend call is logged and swallowed, because the guarantee that matters
// is "this device is signed out".
func (c *Coordinator) SignOut(ctx context.Context) {
	if err := c.api.Logout(ctx); err != nil {
		c.log.Warn(ctx, "logout request failed", "error", err)
	}

	c.clearSession(ctx)
	c.nav.NavigateTo(PathSignIn)
}

// UpdateUserData absorbs a profile update into the state and the persisted
// marker. Token and authentication status are untouched; no network call.
func (c *Coordinator) UpdateUserData(ctx context.Context, user api.User) error {
	u := user
	c.state.Update(func(s State) State {
		s.User = &u
		return s
	})
	return c.marker.Save(ctx, &marker.Record{User: user, SavedAt: time.Now()})
}

// CheckAuthStatus reports whether a session marker exists, i.e. whether an
// auto-login attempt is worth making. Presence of the marker proves
// nothing about validity.
func (c *Coordinator) CheckAuthStatus(ctx context.Context) bool {
	rec, err := c.marker.Get(ctx)
	return err == nil && rec != nil
}

// begin marks the start of an auth attempt: loading on, stale error gone.
func (c *Coordinator) begin() {
	c.state.Update(func(s State) State {
		s.IsLoading = true
		s.Error = ""
		return s
	})
}

// settle ends a non-authenticating operation that succeeded.
func (c *Coordinator) settle() {
	c.state.Update(func(s State) State {
		s.IsLoading = false
		return s
	})
}

// establish records a successful authentication outcome atomically across
// the token store, the marker and the state.
func (c *Coordinator) establish(ctx context.Context, user api.User, token string) {
	c.tokens.Set(token)

	if err := c.marker.Save(ctx, &marker.Record{User: user, SavedAt: time.Now()}); err != nil {
		// Session restoration after a reload won't work, but the live
		// session is fine; keep going.
		c.log.Warn(ctx, "failed to persist session marker", "error", err)
	}

	u := user
	c.state.Update(func(s State) State {
		return State{
			IsAuthenticated: true,
			User:            &u,
			Token:           token,
			IsLoading:       false,
			Error:           "",
		}
	})
}

// failAuth records a failed sign-in/sign-up class attempt with a
// user-facing message.
func (c *Coordinator) failAuth(ctx context.Context, err error) {
	c.tokens.Clear()
	msg := userMessage(err)
	c.state.Update(func(State) State {
		return State{Error: msg}
	})
	c.log.Warn(ctx, "auth attempt failed", "error", err)
}

// clearSession wipes the token, the marker and the state. Safe to call any
// number of times, in any session state.
func (c *Coordinator) clearSession(ctx context.Context) {
	c.tokens.Clear()
	if err := c.marker.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear session marker", "error", err)
	}
	c.state.Update(func(State) State { return State{} })
}

// userMessage maps a backend failure onto the message shown next to the
// sign-in/sign-up form. A message provided by the server wins.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "Invalid credentials"
	case errors.Is(err, api.ErrValidation):
		return "Invalid input data"
	case errors.Is(err, api.ErrUnavailable):
		return "Cannot reach the server"
	}
	return "Authentication failed"
}
