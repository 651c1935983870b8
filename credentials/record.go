// Package credentials persists bearer credentials and cached user
// profiles across two storage tiers, namespaced per account.
package credentials

import (
	"fmt"
	"time"
)

// Record is the client-held bearer credential for one account. A record
// whose expiry has passed is never treated as valid, even if it is
// still physically present in storage.
type Record struct {
	Token     string
	TokenKind string
	ExpiresAt time.Time
	Remember  bool
	Email     string
}

// Expired reports whether the record's expiry instant has passed.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Profile is the account metadata cached alongside a credential for
// quick synchronous reads.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tier selects which storage namespace holds an account's entries.
// Exactly one tier holds the active pair for an account at any time.
type Tier int

const (
	// TierDurable survives browser restarts.
	TierDurable Tier = iota
	// TierEphemeral is cleared when the browsing session ends.
	TierEphemeral
)

// TierFor maps the remember flag onto a storage tier.
func TierFor(remember bool) Tier {
	if remember {
		return TierDurable
	}
	return TierEphemeral
}

func (t Tier) String() string {
	if t == TierDurable {
		return "durable"
	}
	return "ephemeral"
}

func (t Tier) other() Tier {
	if t == TierDurable {
		return TierEphemeral
	}
	return TierDurable
}

// StorageError wraps a tier write failure (quota exhaustion, I/O error)
// so callers can distinguish persistence failures from auth failures.
type StorageError struct {
	Tier Tier
	Key  string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage write failed (%s tier, key %q): %v", e.Tier, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
