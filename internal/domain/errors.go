package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by repositories
// and services to communicate domain-specific error conditions. The API
// boundary maps them to client-visible statuses.
// -----------------------------------------------------------------------------

// Auth errors
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// Bucket errors
var (
	ErrBucketNotFound  = errors.New("bucket not found")
	ErrItemNotFound    = errors.New("bucket item not found")
	ErrVersionConflict = errors.New("bucket version conflict")
)

// Flight errors
var (
	ErrPricingUnavailable = errors.New("flight pricing unavailable")
)
