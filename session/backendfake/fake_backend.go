package backendfake

import (
	"context"
	"sync"

	"github.com/hkominsky/bullseye-client/backend"
	"github.com/hkominsky/bullseye-client/credentials"
	"github.com/hkominsky/bullseye-client/session"
)

var _ session.Backend = (*FakeBackend)(nil)

// FakeBackend scripts backend responses for session manager tests and
// records every call it receives.
type FakeBackend struct {
	mu    sync.Mutex
	calls []string

	SignupResponse  *backend.AuthResponse
	SignupErr       error
	LoginResponse   *backend.AuthResponse
	LoginErr        error
	RefreshResponse *backend.AuthResponse
	RefreshErr      error
	MeResponse      *credentials.Profile
	MeErr           error
	LogoutErr       error
	ResetErr        error
	ConfirmErr      error
}

func New() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Signup(_ context.Context, _ backend.SignupRequest) (*backend.AuthResponse, error) {
	f.record("signup")
	return f.SignupResponse, f.SignupErr
}

func (f *FakeBackend) Login(_ context.Context, _, _ string) (*backend.AuthResponse, error) {
	f.record("login")
	return f.LoginResponse, f.LoginErr
}

func (f *FakeBackend) Refresh(_ context.Context, _ string) (*backend.AuthResponse, error) {
	f.record("refresh")
	return f.RefreshResponse, f.RefreshErr
}

func (f *FakeBackend) Me(_ context.Context, _ string) (*credentials.Profile, error) {
	f.record("me")
	return f.MeResponse, f.MeErr
}

func (f *FakeBackend) Logout(_ context.Context, _ string) error {
	f.record("logout")
	return f.LogoutErr
}

func (f *FakeBackend) ResetPassword(_ context.Context, _ string) error {
	f.record("reset-password")
	return f.ResetErr
}

func (f *FakeBackend) ConfirmResetPassword(_ context.Context, _, _ string) error {
	f.record("confirm-reset-password")
	return f.ConfirmErr
}

// CallCount reports how many times the named endpoint was hit.
func (f *FakeBackend) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// TotalCalls reports every backend call made, in order.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *FakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}
