package credentials

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hkominsky/bullseye-client/clock"
	"github.com/hkominsky/bullseye-client/keyval"
	"github.com/pkg/errors"
)

const (
	defaultPrefix = "bullseye"

	// TokenTTL is the local policy window applied when the backend does
	// not supply a usable expiry with the token.
	TokenTTL = 30 * time.Minute

	authKeyInfix = "_auth_data_"
	userKeyInfix = "_user_data_"
)

// recordJSON is the persisted wire form of a Record.
type recordJSON struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"` // epoch millis
	RememberMe  bool   `json:"remember_me"`
}

// Store persists Records and Profiles into the tier selected by each
// record's remember flag. Writing to one tier removes any stale copy
// from the other, so the tiers never diverge for an account.
type Store struct {
	durable   keyval.Store
	ephemeral keyval.Store
	clk       clock.Clock
	prefix    string

	mu       sync.RWMutex
	profiles map[string]*Profile
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPrefix overrides the storage key prefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates a Store over the two tiers.
func NewStore(durable, ephemeral keyval.Store, clk clock.Clock, opts ...StoreOption) (*Store, error) {
	if durable == nil {
		return nil, errors.New("[NewStore] durable tier is required")
	}
	if ephemeral == nil {
		return nil, errors.New("[NewStore] ephemeral tier is required")
	}
	if clk == nil {
		return nil, errors.New("[NewStore] clock is required")
	}
	s := &Store{
		durable:   durable,
		ephemeral: ephemeral,
		clk:       clk,
		prefix:    defaultPrefix,
		profiles:  make(map[string]*Profile),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Write persists the credential and profile into the tier selected by
// the record's remember flag and deletes any same-account entry from
// the other tier. A zero expiry is filled with now + TokenTTL. The
// stored record, with its computed expiry, is returned.
func (s *Store) Write(rec Record, profile *Profile) (Record, error) {
	if rec.Email == "" {
		return Record{}, errors.New("[Store.Write] record has no account email")
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = s.clk.Now().Add(TokenTTL)
	}

	tier := TierFor(rec.Remember)
	payload, err := json.Marshal(recordJSON{
		AccessToken: rec.Token,
		TokenType:   rec.TokenKind,
		ExpiresAt:   rec.ExpiresAt.UnixMilli(),
		RememberMe:  rec.Remember,
	})
	if err != nil {
		return Record{}, errors.Wrap(err, "[Store.Write] marshal record")
	}
	if err := s.tier(tier).Set(s.authKey(rec.Email), string(payload)); err != nil {
		return Record{}, &StorageError{Tier: tier, Key: s.authKey(rec.Email), Err: err}
	}
	if profile != nil {
		userPayload, err := json.Marshal(profile)
		if err != nil {
			return Record{}, errors.Wrap(err, "[Store.Write] marshal profile")
		}
		if err := s.tier(tier).Set(s.userKey(rec.Email), string(userPayload)); err != nil {
			return Record{}, &StorageError{Tier: tier, Key: s.userKey(rec.Email), Err: err}
		}
	}

	// Writing one tier invalidates any stale copy in the other.
	other := s.tier(tier.other())
	_ = other.Delete(s.authKey(rec.Email))
	_ = other.Delete(s.userKey(rec.Email))

	if profile != nil {
		s.mu.Lock()
		s.profiles[rec.Email] = profile
		s.mu.Unlock()
	}
	return rec, nil
}

// Read loads an account's credential, durable tier first. A corrupt
// entry is purged on sight so it can never block a fresh login.
func (s *Store) Read(email string) (*Record, bool) {
	for _, t := range []Tier{TierDurable, TierEphemeral} {
		raw, err := s.tier(t).Get(s.authKey(email))
		if err != nil {
			continue
		}
		var wire recordJSON
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			s.purge(t, email)
			continue
		}
		return &Record{
			Token:     wire.AccessToken,
			TokenKind: wire.TokenType,
			ExpiresAt: time.UnixMilli(wire.ExpiresAt),
			Remember:  wire.RememberMe,
			Email:     email,
		}, true
	}
	return nil, false
}

// Profile returns the cached profile for an account, falling back to
// the persisted copy.
func (s *Store) Profile(email string) (*Profile, bool) {
	s.mu.RLock()
	p, ok := s.profiles[email]
	s.mu.RUnlock()
	if ok {
		return p, true
	}
	for _, t := range []Tier{TierDurable, TierEphemeral} {
		raw, err := s.tier(t).Get(s.userKey(email))
		if err != nil {
			continue
		}
		var profile Profile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			_ = s.tier(t).Delete(s.userKey(email))
			continue
		}
		s.mu.Lock()
		s.profiles[email] = &profile
		s.mu.Unlock()
		return &profile, true
	}
	return nil, false
}

// Erase removes the account's entries from both tiers and drops the
// cached profile.
func (s *Store) Erase(email string) {
	for _, t := range []Tier{TierDurable, TierEphemeral} {
		s.purge(t, email)
	}
	s.mu.Lock()
	delete(s.profiles, email)
	s.mu.Unlock()
}

// ListAccounts returns every account holding a live (non-expired)
// credential in either tier, sorted for stable iteration.
func (s *Store) ListAccounts() []string {
	now := s.clk.Now()
	seen := make(map[string]struct{})
	var accounts []string
	for _, t := range []Tier{TierDurable, TierEphemeral} {
		keys, err := s.tier(t).Keys()
		if err != nil {
			continue
		}
		for _, key := range keys {
			email, ok := s.accountFromKey(key)
			if !ok {
				continue
			}
			if _, dup := seen[email]; dup {
				continue
			}
			rec, ok := s.Read(email)
			if !ok || rec.Expired(now) {
				continue
			}
			seen[email] = struct{}{}
			accounts = append(accounts, email)
		}
	}
	sort.Strings(accounts)
	return accounts
}

func (s *Store) tier(t Tier) keyval.Store {
	if t == TierDurable {
		return s.durable
	}
	return s.ephemeral
}

func (s *Store) purge(t Tier, email string) {
	_ = s.tier(t).Delete(s.authKey(email))
	_ = s.tier(t).Delete(s.userKey(email))
}

func (s *Store) authKey(email string) string {
	return s.prefix + authKeyInfix + email
}

func (s *Store) userKey(email string) string {
	return s.prefix + userKeyInfix + email
}

func (s *Store) accountFromKey(key string) (string, bool) {
	return strings.CutPrefix(key, s.prefix+authKeyInfix)
}
