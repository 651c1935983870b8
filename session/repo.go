package session

import (
	"context"

	"github.com/hkominsky/bullseye-client/backend"
	"github.com/hkominsky/bullseye-client/credentials"
)

// Backend is the slice of the watchlist API the session manager needs.
// *backend.Client satisfies it; tests substitute a scripted fake.
type Backend interface {
	Signup(ctx context.Context, req backend.SignupRequest) (*backend.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*backend.AuthResponse, error)
	Refresh(ctx context.Context, token string) (*backend.AuthResponse, error)
	Me(ctx context.Context, token string) (*credentials.Profile, error)
	Logout(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, email string) error
	ConfirmResetPassword(ctx context.Context, token, newPassword string) error
}
