// Package accounts declares the server-side repository contract for
// account persistence.
package accounts

import (
	"context"

	"github.com/avetisov/credkeeper/internal/server/models"
)

// Repository defines operations for creating and looking up accounts and
// for flipping the activation flag.
type Repository interface {
	// Create stores a new account and returns it with the server-assigned
	// ID and creation time filled in. Implementations should return
	// common.ErrorAlreadyExists when the email is already registered.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByEmail looks up an account by its email identity key.
	// Implementations should return a not-found error when absent.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// Activate sets the account's activation flag. Called exactly once per
	// account, from the confirmation transaction.
	Activate(ctx context.Context, accountID string) error
}
