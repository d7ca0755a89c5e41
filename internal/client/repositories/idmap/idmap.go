// Package idmap keeps the temp-id to canonical-id table for records that
// were created offline and later confirmed by the remote service.
package idmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
)

type Repository interface {
	// Put records that tempID is now known as canonicalID.
	Put(ctx context.Context, m models.IDMapping) error

	// Resolve returns the canonical id for id, or id itself when no
	// mapping exists.
	Resolve(ctx context.Context, entity models.EntityType, id string) (string, error)

	Get(ctx context.Context, tempID string) (*models.IDMapping, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, m models.IDMapping) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO id_mappings (temp_id, canonical_id, entity_type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(temp_id) DO UPDATE SET canonical_id = excluded.canonical_id`,
		m.TempID, m.CanonicalID, string(m.Entity), m.CreatedAt)
	if err != nil {
		return common.StorageError("put id mapping", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, tempID string) (*models.IDMapping, error) {
	var (
		m      models.IDMapping
		entity string
	)
	err := r.db.QueryRowContext(ctx, `SELECT temp_id, canonical_id, entity_type, created_at
		FROM id_mappings WHERE temp_id = ?`, tempID).Scan(&m.TempID, &m.CanonicalID, &entity, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("id mapping %s: %w", tempID, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.StorageError("get id mapping", err)
	}
	m.Entity = models.EntityType(entity)
	return &m, nil
}

func (r *SQLiteRepository) Resolve(ctx context.Context, entity models.EntityType, id string) (string, error) {
	var canonical string
	err := r.db.QueryRowContext(ctx, `SELECT canonical_id FROM id_mappings
		WHERE temp_id = ? AND entity_type = ?`, id, string(entity)).Scan(&canonical)
	if errors.Is(err, sql.ErrNoRows) {
		return id, nil
	}
	if err != nil {
		return "", common.StorageError("resolve id", err)
	}
	return canonical, nil
}
