package confirmations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avetisov/credkeeper/internal/common"
	"github.com/avetisov/credkeeper/internal/dbx"
	"github.com/avetisov/credkeeper/internal/server/models"
)

// PostgresRepository implements confirmation-token persistence over
// dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new confirmation token row.
func (r *PostgresRepository) Create(ctx context.Context, token *models.ConfirmationToken) error {
	query := `
		INSERT INTO confirmation_tokens (account_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		token.AccountID, token.Token, token.CreatedAt, token.ExpiresAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByToken returns the confirmation token row for the given token string.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.ConfirmationToken, error) {
	query := `
		SELECT id, account_id, token, created_at, expires_at, confirmed_at
		FROM confirmation_tokens
		WHERE token = $1
	`
	ct := &models.ConfirmationToken{}
	var confirmedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&ct.ID, &ct.AccountID, &ct.Token, &ct.CreatedAt, &ct.ExpiresAt, &confirmedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if confirmedAt.Valid {
		ct.ConfirmedAt = &confirmedAt.Time
	}
	return ct, nil
}

// MarkConfirmed sets confirmed_at for an unconsumed token. The
// `confirmed_at IS NULL` guard makes the update atomic under concurrent
// confirm attempts; the losing caller sees zero affected rows and gets
// false.
func (r *PostgresRepository) MarkConfirmed(ctx context.Context, token string, when time.Time) (bool, error) {
	query := `
		UPDATE confirmation_tokens
		SET confirmed_at = $2
		WHERE token = $1 AND confirmed_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, token, when)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
