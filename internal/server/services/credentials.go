// Package services contains server-side business logic: issuing and
// refreshing bearer credentials, and the registration/confirmation flow
// that gates account activation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avetisov/credkeeper/internal/common"
	"github.com/avetisov/credkeeper/internal/dbx"
	"github.com/avetisov/credkeeper/internal/logging"
	"github.com/avetisov/credkeeper/internal/server/auth"
	"github.com/avetisov/credkeeper/internal/server/models"
	"github.com/avetisov/credkeeper/internal/server/repositories/repomanager"
)

// timeNow is a seam for tests that need deterministic clocks.
var timeNow = time.Now

// bearerPrefix is stripped case-sensitively from presented refresh tokens.
const bearerPrefix = "Bearer "

// AuthBundle is the response of a successful authenticate or refresh call:
// a fresh token pair plus the profile fields copied from the account.
type AuthBundle struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Email        string
	FirstName    string
	LastName     string
}

// PasswordVerifier checks an (email, password) pair against stored
// credentials. Implementations must return common.ErrInvalidCredentials
// both for an unknown email and for a wrong password.
type PasswordVerifier interface {
	Verify(ctx context.Context, email, password string) error
}

// CredentialService orchestrates the authenticate and refresh flows. It
// holds no persisted state of its own; account loading goes through the
// repository manager and token work through the codec.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	verifier    PasswordVerifier
	logger      logging.Logger
}

// NewCredentialService constructs a CredentialService with its four
// collaborators injected.
func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec, verifier PasswordVerifier, logger logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		codec:       codec,
		verifier:    verifier,
		logger:      logger.With("module", "credentials"),
	}
}

// Authenticate verifies the password, requires the account to be
// activated, and mints a fresh access+refresh pair.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*AuthBundle, error) {
	if err := s.verifier.Verify(ctx, email, password); err != nil {
		return nil, err
	}

	// Checked independently of the verifier for defense in depth.
	account, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}

	if !account.Activated {
		return nil, common.ErrAccountNotActivated
	}

	return s.issueBundle(account)
}

// Refresh validates a presented refresh token and mints a fresh pair for
// its subject. The optional "Bearer " scheme prefix is stripped before
// decoding. All validation failures on a well-formed token collapse into
// common.ErrInvalidToken; the prior refresh token is not revoked and
// remains usable until its own expiry.
func (s *CredentialService) Refresh(ctx context.Context, presented string) (*AuthBundle, error) {
	token := strings.TrimPrefix(presented, bearerPrefix)

	// Subject is extracted before expiry validation so an expired token
	// still reports ErrInvalidToken rather than ErrMalformedToken.
	email, err := s.codec.ExtractSubject(token)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// A verified signature pointing at a missing account implies
			// inconsistent state.
			s.logger.Warn(ctx, "token subject has no account", "email", email)
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}

	if !s.codec.IsValid(token, account.Email) {
		return nil, common.ErrInvalidToken
	}

	return s.issueBundle(account)
}

func (s *CredentialService) issueBundle(account *models.Account) (*AuthBundle, error) {
	access, err := s.codec.Issue(account.Email, auth.TokenKindAccess)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.codec.Issue(account.Email, auth.TokenKindRefresh)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthBundle{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Email:        account.Email,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
	}, nil
}

// AccountPasswordVerifier is the default PasswordVerifier: it loads the
// account by email and compares the bcrypt hash.
type AccountPasswordVerifier struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

// NewAccountPasswordVerifier constructs the bcrypt-backed verifier.
func NewAccountPasswordVerifier(db dbx.DBTX, m repomanager.RepositoryManager) *AccountPasswordVerifier {
	return &AccountPasswordVerifier{db: db, repomanager: m}
}

// Verify reports common.ErrInvalidCredentials for both unknown emails and
// wrong passwords so callers cannot enumerate accounts.
func (v *AccountPasswordVerifier) Verify(ctx context.Context, email, password string) error {
	account, err := v.repomanager.Accounts(v.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredentials
		}
		return common.ErrorInternal
	}
	if !auth.CheckPasswordHash(account.PasswordHash, password) {
		return common.ErrInvalidCredentials
	}
	return nil
}
