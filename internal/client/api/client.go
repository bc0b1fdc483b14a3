// Package api implements the typed REST client for the JobTrackr backend.
//
// The client rides on an http.Client with a cookie jar, so the HttpOnly
// refresh cookie issued by the backend travels with every request without
// ever being visible to this code. Access tokens come from a TokenSource
// and are attached by the AuthTransport round tripper.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client defines the backend operations the session layer consumes.
//
// Do is the escape hatch for authorized calls outside the auth contract
// (profile updates, job-track CRUD): they still pass through the
// token-attaching, 401-recovering transport.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegistrationResponse, error)
	VerifyRegistration(ctx context.Context, req VerifyRegistrationRequest) (*AuthResponse, error)
	ResendVerification(ctx context.Context, email string) (*MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)
	Refresh(ctx context.Context) (*RefreshResponse, error)
	Logout(ctx context.Context) error
	Do(ctx context.Context, method, path string, body, out any) error
}

// HTTPClient is the concrete Client over net/http.
type HTTPClient struct {
	baseURL   string
	http      *http.Client
	transport *AuthTransport
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given API origin. The returned
// client owns a fresh cookie jar; sessions are therefore scoped to the
// client instance, which is what makes isolated instances in tests work.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) (*HTTPClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	transport := &AuthTransport{Tokens: tokens}

	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		http: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   timeout,
		},
	}, nil
}

// SetRefresher wires the 401-recovery callback into the transport.
func (c *HTTPClient) SetRefresher(r Refresher) {
	c.transport.SetRefresher(r)
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*RegistrationResponse, error) {
	var resp RegistrationResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyRegistration(ctx context.Context, req VerifyRegistrationRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/verify-registration", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	if err := c.Do(ctx, http.MethodPost, "/auth/resend-verification", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	if err := c.Do(ctx, http.MethodPost, "/accounts/forgot-password", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/accounts/reset-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh calls POST /auth/refresh with an empty body. Authentication is
// carried entirely by the refresh cookie in the jar.
func (c *HTTPClient) Refresh(ctx context.Context) (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/refresh", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", struct{}{}, nil)
}

// Do sends a JSON request to path and decodes a JSON response into out
// (skipped when out is nil). Errors are mapped onto the package taxonomy:
// transport failures wrap ErrUnavailable, non-2xx statuses become *Error.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError turns a non-2xx response into an *Error, preserving the
// server-provided message when the body carries one.
func (c *HTTPClient) mapError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}
