package confirmations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avetisov/credkeeper/internal/common"
	"github.com/avetisov/credkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+confirmation_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`

	now := time.Now()
	mock.ExpectExec(q).
		WithArgs("acc-1", "tok123", now, now.Add(15*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.ConfirmationToken{
		AccountID: "acc-1",
		Token:     "tok123",
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByToken_FoundUnconsumed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*account_id,\s*token,\s*created_at,\s*expires_at,\s*confirmed_at\s+FROM\s+confirmation_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "account_id", "token", "created_at", "expires_at", "confirmed_at"}).
		AddRow("ct-1", "acc-1", "tok123", now, now.Add(15*time.Minute), nil)

	mock.ExpectQuery(q).WithArgs("tok123").WillReturnRows(rows)

	got, err := repo.FindByToken(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AccountID != "acc-1" || got.ConfirmedAt != nil {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindByToken_FoundConsumed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	used := now.Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"id", "account_id", "token", "created_at", "expires_at", "confirmed_at"}).
		AddRow("ct-1", "acc-1", "tok123", now.Add(-10*time.Minute), now.Add(5*time.Minute), used)

	mock.ExpectQuery(`(?s)^\s*SELECT\b`).WithArgs("tok123").WillReturnRows(rows)

	got, err := repo.FindByToken(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(used) {
		t.Fatalf("expected confirmed_at %v, got %+v", used, got.ConfirmedAt)
	}
}

func TestFindByToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\b`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByToken(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestMarkConfirmed_FirstCallWins(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+confirmation_tokens\s+SET\s+confirmed_at\s*=\s*\$2\s+WHERE\s+token\s*=\s*\$1\s+AND\s+confirmed_at\s+IS\s+NULL\s*$`

	when := time.Now()
	mock.ExpectExec(q).WithArgs("tok123", when).WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkConfirmed(context.Background(), "tok123", when)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected first MarkConfirmed to win")
	}
}

func TestMarkConfirmed_AlreadyConsumed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	when := time.Now()
	mock.ExpectExec(`(?s)^\s*UPDATE\s+confirmation_tokens\b`).
		WithArgs("tok123", when).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkConfirmed(context.Background(), "tok123", when)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected MarkConfirmed to report false for a consumed token")
	}
}

func TestMarkConfirmed_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	when := time.Now()
	mock.ExpectExec(`(?s)^\s*UPDATE\s+confirmation_tokens\b`).
		WithArgs("tok123", when).
		WillReturnError(errors.New("db down"))

	if _, err := repo.MarkConfirmed(context.Background(), "tok123", when); err == nil {
		t.Fatalf("expected wrapped db error")
	}
}
