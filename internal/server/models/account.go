// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered user. Email is the identity key (unique,
// case-sensitive as stored); Activated stays false until the owner proves
// control of the email address through the confirmation flow.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Activated    bool
	CreatedAt    time.Time
}
