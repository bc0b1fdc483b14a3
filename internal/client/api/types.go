package api

import "time"

// UserRole mirrors the backend's role enum.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is the profile object returned by the backend. Identity (ID, Email)
// is immutable; the remaining fields may change through profile operations
// and are absorbed as-is.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// VerifyRegistrationRequest completes a pending registration with the code
// the backend emailed to the user.
type VerifyRegistrationRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest is the body of POST /accounts/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and verify-registration: a fresh access
// token plus the authenticated user. The refresh token never appears in a
// body; the backend sets it as an HttpOnly cookie.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// RegistrationResponse acknowledges a registration whose email verification
// is still pending. It carries no token: the user is not authenticated yet.
type RegistrationResponse struct {
	Message string `json:"message"`
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse is the generic {message} acknowledgement used by
// resend-verification and the password-reset endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
