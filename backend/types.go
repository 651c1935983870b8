package backend

import "github.com/hkominsky/bullseye-client/credentials"

// AuthResponse is the success body of the signup, login, and refresh
// endpoints.
type AuthResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	User        *credentials.Profile `json:"user,omitempty"`
}

// SignupRequest is the registration payload.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// errorResponse mirrors the backend's JSON error envelope. Every error
// body is expected to expose a detail string.
type errorResponse struct {
	Detail string `json:"detail"`
}
