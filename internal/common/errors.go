// Package common defines shared constants and sentinel errors used across
// KeyWarden components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors. These form the coarse taxonomy returned to
	// callers; detail stays in the logs.
	ErrInternal           = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")

	// Auth errors (malformed, unknown, wrong-secret or expired bearer).
	ErrInvalidToken = errors.New("invalid token")
)
