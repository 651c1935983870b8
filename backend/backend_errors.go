package backend

import "fmt"

// AuthError is a non-2xx backend response. Message carries the
// server-provided detail, or an operation-specific fallback when the
// body had none.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NetworkError is a transport-level failure reaching the backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("unable to connect to server (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
