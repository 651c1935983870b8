package session

import "errors"

var (
	// ErrNoToken means an operation that needs an established session
	// ran without one.
	ErrNoToken = errors.New("no token available")

	// ErrMissingToken means an OAuth completion arrived without its
	// token query parameter. No network call is made in that case.
	ErrMissingToken = errors.New("no token provided in oauth callback")
)
