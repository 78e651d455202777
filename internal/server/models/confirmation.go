package models

import "time"

// ConfirmationToken is a single-use, time-boxed token proving control of a
// registered email address. ConfirmedAt is nil while the token is
// unconsumed; once set it never changes and the token is permanently
// exhausted. Tokens are kept after use as an audit trail.
type ConfirmationToken struct {
	ID          string
	AccountID   string
	Token       string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ConfirmedAt *time.Time
}
