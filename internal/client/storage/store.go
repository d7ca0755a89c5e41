// Package storage opens the client cache database and groups the cache
// store, the offline operation queue, the id mapping table and the
// metadata table behind a single handle.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/migrations"
	"github.com/dmitrijs2005/memodiary/internal/client/repositories/diaries"
	"github.com/dmitrijs2005/memodiary/internal/client/repositories/idmap"
	"github.com/dmitrijs2005/memodiary/internal/client/repositories/memos"
	"github.com/dmitrijs2005/memodiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/memodiary/internal/client/repositories/operations"
	"github.com/dmitrijs2005/memodiary/internal/dbx"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Store bundles the client repositories. Repositories obtained from a
// Store passed to a WithTx callback are bound to that transaction.
type Store struct {
	db  *sql.DB
	now func() time.Time

	Memos      memos.Repository
	Diaries    diaries.Repository
	Operations operations.Repository
	IDMap      idmap.Repository
	Metadata   metadata.Repository
}

// Open opens (creating if needed) the SQLite cache at dsn and applies
// migrations. now stamps queued operations and should be the clock the
// sync manager uses; nil means time.Now.
func Open(ctx context.Context, dsn string, now func() time.Time) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("cache dsn is required")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// one connection: the sync loop and foreground commands take turns
	db.SetMaxOpenConns(1)

	return New(db, now), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{db: db, now: now}
	s.bind(db)
	return s
}

func (s *Store) bind(db dbx.DBTX) {
	s.Memos = memos.NewSQLiteRepository(db)
	s.Diaries = diaries.NewSQLiteRepository(db)
	s.Operations = operations.NewSQLiteRepository(db).WithClock(s.now)
	s.IDMap = idmap.NewSQLiteRepository(db)
	s.Metadata = metadata.NewSQLiteRepository(db)
}

// WithTx runs fn with a Store whose repositories share one transaction.
// Only the tx-bound repositories may be used inside fn.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txStore := &Store{db: s.db, now: s.now}
		txStore.bind(tx)
		return fn(ctx, txStore)
	})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
