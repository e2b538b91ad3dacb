package service

import "errors"

// Domain outcomes are expected and always handled; ErrStorage marks
// infrastructure faults, logged in full server-side and surfaced to the
// caller as an opaque failure.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid user credentials")
	ErrAccountBlocked     = errors.New("account is blocked due to multiple failed login attempts")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStorage            = errors.New("storage failure")
)
