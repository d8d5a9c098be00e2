package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrAccountDisabled    = errors.New("account disabled")
)
