// Package apperr defines the sentinel errors shared across keepnote services.
// Callers match them with errors.Is; the HTTP layer maps each to a status code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or an embedded note is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned on a duplicate unique key.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict is returned when a compare-and-swap write loses to a
	// concurrent writer.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is the internal wrong-secret failure. It never
	// crosses the auth service boundary; Login collapses it into
	// ErrUnauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is the single outward authentication failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken is returned for a malformed or badly signed token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token's validity window has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrStorage wraps failures of the underlying record store.
	ErrStorage = errors.New("storage error")
	// ErrConfiguration is returned when required configuration is missing.
	ErrConfiguration = errors.New("configuration error")
)

// Storage wraps a driver error so callers can match apperr.ErrStorage while
// the original cause stays visible in logs.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
