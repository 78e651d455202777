package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avetisov/credkeeper/internal/common"
	"github.com/avetisov/credkeeper/internal/dbx"
	"github.com/avetisov/credkeeper/internal/logging"
	"github.com/avetisov/credkeeper/internal/server/models"
	accountsrepo "github.com/avetisov/credkeeper/internal/server/repositories/accounts"
	confirmationsrepo "github.com/avetisov/credkeeper/internal/server/repositories/confirmations"
)

// --- in-memory fakes shared by the service tests ---

type memAccounts struct {
	byEmail map[string]*models.Account
	nextID  int

	createErr error
	findErr   error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: map[string]*models.Account{}}
}

func (m *memAccounts) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byEmail[account.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	m.nextID++
	account.ID = fmt.Sprintf("acc-%d", m.nextID)
	account.CreatedAt = time.Now()
	m.byEmail[account.Email] = account
	return account, nil
}

func (m *memAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	account, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return account, nil
}

func (m *memAccounts) Activate(ctx context.Context, accountID string) error {
	for _, account := range m.byEmail {
		if account.ID == accountID {
			account.Activated = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type memConfirmations struct {
	byToken map[string]*models.ConfirmationToken

	createErr     error
	markConfirmed func(token string, when time.Time) (bool, error)
}

func newMemConfirmations() *memConfirmations {
	return &memConfirmations{byToken: map[string]*models.ConfirmationToken{}}
}

func (m *memConfirmations) Create(ctx context.Context, ct *models.ConfirmationToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byToken[ct.Token] = ct
	return nil
}

func (m *memConfirmations) FindByToken(ctx context.Context, token string) (*models.ConfirmationToken, error) {
	ct, ok := m.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return ct, nil
}

func (m *memConfirmations) MarkConfirmed(ctx context.Context, token string, when time.Time) (bool, error) {
	if m.markConfirmed != nil {
		return m.markConfirmed(token, when)
	}
	ct, ok := m.byToken[token]
	if !ok || ct.ConfirmedAt != nil {
		return false, nil
	}
	ct.ConfirmedAt = &when
	return true, nil
}

type fakeRepoManager struct {
	a *memAccounts
	c *memConfirmations
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{a: newMemAccounts(), c: newMemConfirmations()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository {
	return m.a
}
func (m *fakeRepoManager) Confirmations(db dbx.DBTX) confirmationsrepo.Repository {
	return m.c
}

type fakeNotifier struct {
	emails []string
	tokens []string
	err    error
}

func (n *fakeNotifier) SendConfirmationLink(ctx context.Context, email, token string) error {
	if n.err != nil {
		return n.err
	}
	n.emails = append(n.emails, email)
	n.tokens = append(n.tokens, token)
	return nil
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func discardLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func stubTime(t *testing.T, fixed time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })
}
