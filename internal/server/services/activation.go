package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/avetisov/credkeeper/internal/common"
	"github.com/avetisov/credkeeper/internal/dbx"
	"github.com/avetisov/credkeeper/internal/logging"
	"github.com/avetisov/credkeeper/internal/server/auth"
	"github.com/avetisov/credkeeper/internal/server/config"
	"github.com/avetisov/credkeeper/internal/server/models"
	"github.com/avetisov/credkeeper/internal/server/notifier"
	"github.com/avetisov/credkeeper/internal/server/repositories/repomanager"
)

// confirmationTokenBytes gives 256 bits of randomness per token.
const confirmationTokenBytes = 32

// ActivationService owns the registration-confirmation workflow: it
// creates confirmation tokens tied to fresh accounts and, on confirmation,
// consumes the token and flips the account's activation flag.
type ActivationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notifier.Notifier
	cfg         *config.Config
	logger      logging.Logger
}

// NewActivationService constructs an ActivationService using repositories,
// the notifier, and server config.
func NewActivationService(db *sql.DB, m repomanager.RepositoryManager, n notifier.Notifier, cfg *config.Config, logger logging.Logger) *ActivationService {
	return &ActivationService{
		db:          db,
		repomanager: m,
		notifier:    n,
		cfg:         cfg,
		logger:      logger.With("module", "activation"),
	}
}

// Register validates the email, creates a deactivated account, begins the
// activation flow, and hands the confirmation link to the notifier. The
// confirmation token string is returned to the caller.
func (s *ActivationService) Register(ctx context.Context, firstName, lastName, email, password string) (string, error) {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return "", common.ErrInvalidEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	account, err := s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrEmailTaken
		}
		return "", fmt.Errorf("creating account: %w", err)
	}

	token, err := s.BeginActivation(ctx, account)
	if err != nil {
		return "", err
	}

	if err := s.notifier.SendConfirmationLink(ctx, email, token); err != nil {
		return "", fmt.Errorf("notifying %s: %w", email, err)
	}

	s.logger.Info(ctx, "registration accepted", "email", email)
	return token, nil
}

// BeginActivation generates a random confirmation token for the account
// and persists it with a fixed expiry window. Sending the link is the
// caller's concern.
func (s *ActivationService) BeginActivation(ctx context.Context, account *models.Account) (string, error) {
	token, err := common.MakeRandHexString(confirmationTokenBytes)
	if err != nil {
		return "", fmt.Errorf("generating confirmation token: %w", err)
	}

	now := timeNow()
	ct := &models.ConfirmationToken{
		AccountID: account.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ConfirmationValidityDuration),
	}

	if err := s.repomanager.Confirmations(s.db).Create(ctx, ct); err != nil {
		return "", fmt.Errorf("storing confirmation token: %w", err)
	}

	return token, nil
}

// Confirm consumes a confirmation token and activates its account. A
// second confirm attempt is an error, not a no-op, so replays surface. The
// timestamp write and the activation flip happen in one transaction; the
// conditional update inside MarkConfirmed serializes concurrent attempts.
func (s *ActivationService) Confirm(ctx context.Context, token string) error {
	ct, err := s.repomanager.Confirmations(s.db).FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		return fmt.Errorf("loading confirmation token: %w", err)
	}

	if ct.ConfirmedAt != nil {
		return common.ErrTokenAlreadyUsed
	}

	now := timeNow()
	if !now.Before(ct.ExpiresAt) {
		return common.ErrTokenExpired
	}

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.repomanager.Confirmations(tx).MarkConfirmed(ctx, token, now)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race against a concurrent confirm.
			return common.ErrTokenAlreadyUsed
		}
		return s.repomanager.Accounts(tx).Activate(ctx, ct.AccountID)
	})
}
