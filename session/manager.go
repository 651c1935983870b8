// Package session orchestrates the client-held bearer credential
// across logins, reloads, silent refresh, inactivity timeouts, and
// multi-account switching.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hkominsky/bullseye-client/backend"
	"github.com/hkominsky/bullseye-client/clock"
	"github.com/hkominsky/bullseye-client/credentials"
	"github.com/hkominsky/bullseye-client/lifecycle"
	"github.com/hkominsky/bullseye-client/notify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Reasons carried by forced-expiration notifications and redirects.
const (
	ReasonExpired    = "expired"
	ReasonInactivity = "inactivity"
	ReasonLogout     = "logout"
)

// silentRefreshTimeout bounds the background refresh request fired from
// the scheduler, which has no caller-supplied context.
const silentRefreshTimeout = 15 * time.Second

// LoginRedirect forces navigation to the login entry point after a
// session ends. reason is ReasonExpired or ReasonInactivity.
type LoginRedirect func(reason string)

// Manager is the session facade. One instance is constructed at process
// start and passed to whatever needs it; there is no package-level
// singleton.
type Manager struct {
	client   Backend
	store    *credentials.Store
	notifier notify.Notifier
	clk      clock.Clock
	log      zerolog.Logger
	redirect LoginRedirect
	sched    *lifecycle.Scheduler

	schedOpts []lifecycle.Option

	mu               sync.Mutex
	active           string // account email; empty when anonymous
	record           *credentials.Record
	inactivityWindow time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithLoginRedirect sets the navigation callback invoked after forced
// expiration.
func WithLoginRedirect(redirect LoginRedirect) Option {
	return func(m *Manager) {
		m.redirect = redirect
	}
}

// WithInactivityTimeout overrides the default inactivity window.
func WithInactivityTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.inactivityWindow = d
		}
	}
}

// WithRefreshThreshold overrides the scheduler's refresh lead time.
func WithRefreshThreshold(d time.Duration) Option {
	return func(m *Manager) {
		m.schedOpts = append(m.schedOpts, lifecycle.WithRefreshThreshold(d))
	}
}

// NewManager initializes the session facade with its dependencies.
func NewManager(client Backend, store *credentials.Store, notifier notify.Notifier, clk clock.Clock, opts ...Option) (*Manager, error) {
	if client == nil {
		return nil, errors.New("[NewManager] backend client is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}
	if notifier == nil {
		return nil, errors.New("[NewManager] notifier is required")
	}
	if clk == nil {
		return nil, errors.New("[NewManager] clock is required")
	}

	m := &Manager{
		client:           client,
		store:            store,
		notifier:         notifier,
		clk:              clk,
		log:              zerolog.Nop(),
		inactivityWindow: lifecycle.DefaultInactivityTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sched = lifecycle.New(clk, lifecycle.Callbacks{
		OnRefreshDue: m.refreshDue,
		OnInactivity: m.inactivityExpired,
	}, m.schedOpts...)
	return m, nil
}

// Signup registers an account and establishes its session.
func (m *Manager) Signup(ctx context.Context, req backend.SignupRequest, remember bool) (*credentials.Profile, error) {
	resp, err := m.client.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.adopt(resp, req.Email, remember)
}

// Login authenticates with email and password.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (*credentials.Profile, error) {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.adopt(resp, email, remember)
}

// ProcessOAuthCallback completes an OAuth login. The redirect only
// carries a token, so the profile is fetched with it before anything is
// persisted; a failed fetch therefore leaves no half-authenticated
// state behind.
func (m *Manager) ProcessOAuthCallback(ctx context.Context, token, provider string, remember bool) (*credentials.Profile, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	profile, err := m.client.Me(ctx, token)
	if err != nil {
		m.log.Warn().Err(err).Str("provider", provider).Msg("oauth profile fetch failed")
		return nil, errors.Wrap(err, "[Manager.ProcessOAuthCallback] profile fetch")
	}
	return m.adopt(&backend.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        profile,
	}, profile.Email, remember)
}

// RefreshToken renews the current bearer token. Any failure tears the
// session down before the error is returned, so the caller both learns
// of the failure and observes the session already gone.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.active == "" || m.record == nil {
		m.mu.Unlock()
		return "", ErrNoToken
	}
	account := m.active
	current := *m.record
	m.mu.Unlock()

	if current.Expired(m.clk.Now()) {
		m.forceExpire(ReasonExpired)
		return "", ErrNoToken
	}

	resp, err := m.client.Refresh(ctx, current.Token)
	if err != nil {
		m.log.Warn().Err(err).Str("account", account).Msg("token refresh failed")
		m.forceExpire(ReasonExpired)
		return "", err
	}

	// A logout or account switch may have raced the request; never
	// resurrect a session that is no longer active.
	m.mu.Lock()
	stillActive := m.active == account
	m.mu.Unlock()
	if !stillActive {
		return "", ErrNoToken
	}

	rec := credentials.Record{
		Token:     resp.AccessToken,
		TokenKind: resp.TokenType,
		Remember:  current.Remember,
		Email:     account,
	}
	if exp, ok := credentials.ExpiryFromToken(resp.AccessToken); ok {
		rec.ExpiresAt = exp
	}
	profile, _ := m.store.Profile(account)
	stored, err := m.store.Write(rec, profile)
	if err != nil {
		m.forceExpire(ReasonExpired)
		return "", err
	}

	m.mu.Lock()
	if m.active == account {
		m.record = &stored
	}
	m.mu.Unlock()

	// A renewed token still inside the refresh window is not chained
	// into another immediate refresh; a server that keeps minting
	// short-lived tokens must not loop this path.
	if !m.sched.ScheduleRefresh(stored.ExpiresAt) {
		m.log.Debug().Str("account", account).Msg("renewed token already inside refresh window")
	}
	m.log.Debug().Str("account", account).Time("expires_at", stored.ExpiresAt).Msg("token refreshed")
	return stored.Token, nil
}

// Token returns the current bearer token, or empty when anonymous. A
// token whose expiry has passed is never returned: the read itself
// forces expiration, so a missed refresh (laptop sleep) cannot leak a
// stale credential to callers.
func (m *Manager) Token() string {
	m.mu.Lock()
	rec := m.record
	m.mu.Unlock()
	if rec == nil {
		return ""
	}
	if rec.Expired(m.clk.Now()) {
		m.forceExpire(ReasonExpired)
		return ""
	}
	return rec.Token
}

// IsAuthenticated reports whether a live token is held.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// ShouldRefreshToken reports whether the token has entered the refresh
// threshold window; callers batching requests can refresh proactively.
func (m *Manager) ShouldRefreshToken() bool {
	m.mu.Lock()
	rec := m.record
	m.mu.Unlock()
	if rec == nil {
		return false
	}
	now := m.clk.Now()
	if rec.Expired(now) {
		return false
	}
	return !now.Before(rec.ExpiresAt.Add(-m.sched.RefreshThreshold()))
}

// Logout ends the session. The backend call is best-effort: security
// requires erasing local credentials whether or not the server is
// reachable.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	account := m.active
	rec := m.record
	m.active = ""
	m.record = nil
	m.mu.Unlock()

	if rec != nil && !rec.Expired(m.clk.Now()) {
		if err := m.client.Logout(ctx, rec.Token); err != nil {
			m.log.Warn().Err(err).Msg("backend logout failed; clearing local session anyway")
		}
	}
	if account != "" {
		m.store.Erase(account)
	}
	m.sched.CancelAll()
	m.notifier.Publish(notify.Event{
		ID:     uuid.New(),
		Name:   notify.UserLoggedOut,
		Reason: ReasonLogout,
		At:     m.clk.Now(),
	})
	m.log.Info().Str("account", account).Msg("logged out")
}

// SwitchAccount repoints the session at another stored account. Returns
// false without side effects when that account has no live credential.
func (m *Manager) SwitchAccount(email string) bool {
	rec, ok := m.store.Read(email)
	if !ok || rec.Expired(m.clk.Now()) {
		return false
	}

	m.mu.Lock()
	m.active = email
	m.record = rec
	window := m.inactivityWindow
	m.mu.Unlock()

	m.sched.CancelAll()
	if !rec.Remember {
		m.sched.ScheduleInactivityTimeout(window)
	}
	m.log.Info().Str("account", email).Msg("switched account")
	m.armRefresh(rec.ExpiresAt)
	return true
}

// Resume restores a stored session after a reload or restart. With an
// empty email it picks the first live stored account.
func (m *Manager) Resume(email string) bool {
	if email == "" {
		accounts := m.store.ListAccounts()
		if len(accounts) == 0 {
			return false
		}
		email = accounts[0]
	}
	return m.SwitchAccount(email)
}

// Accounts lists every account with a live stored credential.
func (m *Manager) Accounts() []string {
	return m.store.ListAccounts()
}

// CurrentProfile returns the cached profile for the active account.
func (m *Manager) CurrentProfile() (*credentials.Profile, bool) {
	m.mu.Lock()
	account := m.active
	m.mu.Unlock()
	if account == "" {
		return nil, false
	}
	return m.store.Profile(account)
}

// SetSessionTimeout overrides the inactivity window and re-arms the
// timer. No-op for remembered or anonymous sessions; remembered
// sessions never time out from inactivity.
func (m *Manager) SetSessionTimeout(d time.Duration) {
	if d <= 0 {
		d = lifecycle.DefaultInactivityTimeout
	}
	m.mu.Lock()
	m.inactivityWindow = d
	rec := m.record
	m.mu.Unlock()
	if rec == nil || rec.Remember {
		return
	}
	m.sched.ScheduleInactivityTimeout(d)
}

// ResetSessionTimeout re-arms the inactivity timer with the current
// window. No-op for remembered or anonymous sessions.
func (m *Manager) ResetSessionTimeout() {
	m.mu.Lock()
	rec := m.record
	window := m.inactivityWindow
	m.mu.Unlock()
	if rec == nil || rec.Remember {
		return
	}
	m.sched.ScheduleInactivityTimeout(window)
}

// RecordActivity is the activity monitor's hook.
func (m *Manager) RecordActivity() {
	m.ResetSessionTimeout()
}

// RequestPasswordReset asks the backend to email a reset token.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.client.ResetPassword(ctx, email)
}

// ConfirmPasswordReset completes a reset with the emailed token.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return m.client.ConfirmResetPassword(ctx, token, newPassword)
}

// Close cancels both timers. Safe to call at any point, including while
// a fired timer handler's work is still pending.
func (m *Manager) Close() {
	m.sched.CancelAll()
}

// adopt persists a fresh credential, repoints the active session, and
// arms the timers.
func (m *Manager) adopt(resp *backend.AuthResponse, email string, remember bool) (*credentials.Profile, error) {
	profile := resp.User
	if profile != nil && profile.Email != "" {
		email = profile.Email
	}
	rec := credentials.Record{
		Token:     resp.AccessToken,
		TokenKind: resp.TokenType,
		Remember:  remember,
		Email:     email,
	}
	// Prefer the lifetime the server minted into the token; the store
	// falls back to the local policy window otherwise.
	if exp, ok := credentials.ExpiryFromToken(resp.AccessToken); ok {
		rec.ExpiresAt = exp
	}
	stored, err := m.store.Write(rec, profile)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active = stored.Email
	m.record = &stored
	window := m.inactivityWindow
	m.mu.Unlock()

	m.sched.CancelAll()
	if !stored.Remember {
		m.sched.ScheduleInactivityTimeout(window)
	}
	m.log.Info().
		Str("account", stored.Email).
		Bool("remember", stored.Remember).
		Time("expires_at", stored.ExpiresAt).
		Msg("session established")
	m.armRefresh(stored.ExpiresAt)
	return profile, nil
}

// armRefresh arms the refresh timer, or refreshes immediately when the
// token is already inside the threshold window and no timer could be
// armed. RefreshToken itself never calls this, so a still-short renewed
// token stops after a single eager attempt.
func (m *Manager) armRefresh(expiry time.Time) {
	if m.sched.ScheduleRefresh(expiry) {
		return
	}
	m.log.Debug().Time("expires_at", expiry).Msg("token already inside refresh window; refreshing now")
	m.refreshDue()
}

// refreshDue runs the silent-refresh path when the scheduler fires.
func (m *Manager) refreshDue() {
	ctx, cancel := context.WithTimeout(context.Background(), silentRefreshTimeout)
	defer cancel()
	if _, err := m.RefreshToken(ctx); err != nil {
		// RefreshToken has already forced expiration.
		m.log.Debug().Err(err).Msg("silent refresh failed")
	}
}

func (m *Manager) inactivityExpired() {
	m.forceExpire(ReasonInactivity)
}

// forceExpire is the unconditional local teardown path shared by
// expired reads, refresh failures, and inactivity fires. Idempotent:
// when already anonymous it only re-cancels timers.
func (m *Manager) forceExpire(reason string) {
	m.mu.Lock()
	account := m.active
	m.active = ""
	m.record = nil
	m.mu.Unlock()

	m.sched.CancelAll()
	if account == "" {
		return
	}
	m.store.Erase(account)

	name := notify.TokenExpired
	if reason == ReasonInactivity {
		name = notify.SessionExpired
	}
	m.notifier.Publish(notify.Event{
		ID:     uuid.New(),
		Name:   name,
		Reason: reason,
		At:     m.clk.Now(),
	})
	if m.redirect != nil {
		m.redirect(reason)
	}
	m.log.Info().Str("account", account).Str("reason", reason).Msg("session expired")
}
