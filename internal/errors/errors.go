package errors

import (
	"errors"
	"fmt"
)

// Error kinds of the relay. Each maps to one HTTP status at the handler boundary.
var (
	// Caller input
	ErrInvalidRequest = errors.New("invalid request")

	// Session cookies
	ErrSessionExpired        = errors.New("session expired")
	ErrStateMismatch         = errors.New("state mismatch")
	ErrCredentialDecode      = errors.New("credential decode error")
	ErrIncompleteCredentials = errors.New("incomplete credentials")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
