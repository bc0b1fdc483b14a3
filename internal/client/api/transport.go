package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TokenSource yields the current access token. An empty string means
// "no token"; the request is then sent without an Authorization header.
type TokenSource interface {
	Get() string
}

// Refresher obtains a fresh access token and stores it in the TokenSource.
// The session coordinator is the only implementation; it serializes
// concurrent refresh attempts so the transport never has to.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// authPrefixes are the endpoints exempt from the 401 retry loop. Retrying
// a failed login or refresh through the refresh path would recurse.
var authPrefixes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/verify-registration",
	"/auth/resend-verification",
	"/auth/refresh",
	"/auth/logout",
	"/accounts/forgot-password",
	"/accounts/reset-password",
}

func isAuthEndpoint(path string) bool {
	for _, p := range authPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthTransport is an http.RoundTripper that attaches the current access
// token to every outbound request and recovers from expired-token 401s:
// it asks the Refresher for a new token and resubmits the original request
// exactly once. Auth endpoints are exempt, and a failed refresh returns
// the original 401 response untouched, so no retry loop is possible.
type AuthTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource

	mu        sync.RWMutex
	refresher Refresher
}

// SetRefresher wires the session coordinator in after construction.
// The transport and the coordinator reference each other, so one side
// has to be bound late.
func (t *AuthTransport) SetRefresher(r Refresher) {
	t.mu.Lock()
	t.refresher = r
	t.mu.Unlock()
}

func (t *AuthTransport) getRefresher() Refresher {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refresher
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get("X-Request-Id") == "" {
		out.Header.Set("X-Request-Id", uuid.NewString())
	}
	if token := t.Tokens.Get(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthEndpoint(req.URL.Path) {
		return resp, nil
	}

	refresher := t.getRefresher()
	if refresher == nil {
		return resp, nil
	}

	// The original body has been consumed by the first attempt; without
	// GetBody the request cannot be replayed.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	if err := refresher.Refresh(req.Context()); err != nil {
		// Recovery failed: hand the original 401 back to the caller.
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := req.Clone(req.Context())
	retry.Header.Set("X-Request-Id", out.Header.Get("X-Request-Id"))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	if token := t.Tokens.Get(); token != "" {
		retry.Header.Set("Authorization", "Bearer "+token)
	}

	return t.base().RoundTrip(retry)
}
