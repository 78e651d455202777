// Package confirmations declares the server-side repository contract for
// single-use email confirmation tokens.
package confirmations

import (
	"context"
	"time"

	"github.com/avetisov/credkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and consuming
// confirmation tokens. Tokens are never deleted; a consumed token keeps
// its confirmation timestamp as an audit trail.
type Repository interface {
	// Create stores a new confirmation token row.
	Create(ctx context.Context, token *models.ConfirmationToken) error

	// FindByToken looks up a confirmation token by its exact token string.
	// Implementations should return a not-found error when absent.
	FindByToken(ctx context.Context, token string) (*models.ConfirmationToken, error)

	// MarkConfirmed sets the confirmation timestamp if and only if it is
	// still unset, and reports whether this call was the one that set it.
	// The conditional update is what serializes concurrent confirm
	// attempts: at most one caller observes true.
	MarkConfirmed(ctx context.Context, token string, when time.Time) (bool, error)
}
