// Package keyval defines the flat key-value storage contract shared by
// the credential store's durable and ephemeral tiers.
package keyval

import "errors"

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a flat string key-value namespace. Implementations decide
// durability: a file or database backed store survives restarts, an
// in-memory store lasts only for the process lifetime.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}
