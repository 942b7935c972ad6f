package domain

import "errors"

// Sentinel errors returned by services. The transport layer maps these to
// HTTP statuses; anything else surfaces as a generic 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrOverlap            = errors.New("blocked period overlaps an existing one")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountLocked      = errors.New("account temporarily locked")
)
