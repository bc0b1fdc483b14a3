package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Login_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)
		assert.Equal(t, "secret123", req.Password)

		json.NewEncoder(w).Encode(AuthResponse{
			AccessToken: "tok1",
			User:        User{ID: "u1", Email: "a@b.com", Role: RoleUser},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokens{})
	resp, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok1", resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestHTTPClient_RefreshCookieTravelsThroughJar(t *testing.T) {
	// The backend sets the refresh token as an HttpOnly cookie on login;
	// the client must send it back on /auth/refresh without ever reading it.
	var refreshCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{
				Name:     "refresh_token",
				Value:    "rt-opaque",
				HttpOnly: true,
				Path:     "/",
			})
			json.NewEncoder(w).Encode(AuthResponse{AccessToken: "tok1"})
		case "/auth/refresh":
			if cookie, err := r.Cookie("refresh_token"); err == nil {
				refreshCookie = cookie.Value
			}
			json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "tok2"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokens{})
	ctx := context.Background()

	_, err := c.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok2", resp.AccessToken)
	assert.Equal(t, "rt-opaque", refreshCookie)
}

func TestHTTPClient_MapsErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"401 with message", 401, `{"message":"Identifiants invalides"}`, ErrUnauthorized, "Identifiants invalides"},
		{"400 validation", 400, `{"message":"email must be valid"}`, ErrValidation, "email must be valid"},
		{"500 plain", 500, `oops`, nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, &fakeTokens{})
			_, err := c.Login(context.Background(), LoginRequest{})
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.Message)
			if tc.sentinel != nil {
				assert.True(t, errors.Is(err, tc.sentinel))
			}
		})
	}
}

func TestHTTPClient_TransportFailureIsUnavailable(t *testing.T) {
	// Nothing listens here.
	c, err := NewHTTPClient("http://127.0.0.1:1", &fakeTokens{}, 500*time.Millisecond)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPClient_LogoutSendsTokenAndCookie(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokens{token: "tok1"})
	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, "Bearer tok1", gotAuth)
}
