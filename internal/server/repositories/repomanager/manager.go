package repomanager

import (
	"context"
	"database/sql"

	"github.com/avetisov/credkeeper/internal/dbx"
	"github.com/avetisov/credkeeper/internal/server/repositories/accounts"
	"github.com/avetisov/credkeeper/internal/server/repositories/confirmations"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Confirmations(db dbx.DBTX) confirmations.Repository
}
