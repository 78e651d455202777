// Package common defines shared constants and sentinel errors used across
// the credkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Authentication errors.
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNotActivated = errors.New("account not activated")

	// Bearer-token errors. All validation failures on presented refresh
	// tokens collapse into ErrInvalidToken; only a token whose structure
	// or signature cannot be verified at all is ErrMalformedToken.
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")

	// Confirmation-token lifecycle errors.
	ErrTokenNotFound    = errors.New("confirmation token not found")
	ErrTokenAlreadyUsed = errors.New("confirmation token already used")
	ErrTokenExpired     = errors.New("confirmation token expired")

	// Registration errors.
	ErrInvalidEmail = errors.New("invalid email")
	ErrEmailTaken   = errors.New("email already registered")
)
