package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Reddit gateway
var (
	// Authentication errors
	ErrAuthentication = errors.New("authentication failed")
	ErrForbidden      = errors.New("forbidden")

	// Session token errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidTokenType = errors.New("invalid token type")

	// Upstream errors
	ErrUpstream    = errors.New("upstream error")
	ErrRateLimited = errors.New("rate limited")
	ErrNotFound    = errors.New("not found")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
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
