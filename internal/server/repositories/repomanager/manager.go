package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/diaries"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/memos"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// factory serves both plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Memos(db dbx.DBTX) memos.Repository
	Diaries(db dbx.DBTX) diaries.Repository
}
