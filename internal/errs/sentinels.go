// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers. The HTTP boundary maps each to
// exactly one status code; nothing below it leaks database error text.
var (
	// ErrNotFound indicates the target is absent or not owned by the caller.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials indicates a failed login. Unknown username and
	// wrong password collapse into this one error.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrUnauthenticated indicates a missing, malformed or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates an authenticated caller without admin rights.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates malformed input (length bounds, bad ids).
	ErrValidation = errors.New("invalid input")
)
