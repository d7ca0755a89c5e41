package memos

import (
	"context"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
)

// Repository stores cached memos.
type Repository interface {
	// Upsert inserts m or overwrites the row with the same id. created_at
	// of an existing row is kept.
	Upsert(ctx context.Context, m *models.CachedMemo) error

	// Merge mirrors a canonical memo under the last-writer-wins rule and
	// reports whether the local row changed.
	Merge(ctx context.Context, m models.Memo) (bool, error)

	// Get returns the row with the given id, tombstoned or not, or
	// common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.CachedMemo, error)

	// GetLive is Get that treats tombstones as absent.
	GetLive(ctx context.Context, id string) (*models.CachedMemo, error)

	// List returns live memos newest-updated first.
	List(ctx context.Context, q models.MemoQuery) ([]models.CachedMemo, error)

	// Search matches live memos whose content or tags contain query.
	Search(ctx context.Context, query string, limit int) ([]models.CachedMemo, error)

	// MarkDeleted tombstones the row and bumps updated_at.
	MarkDeleted(ctx context.Context, id string, at int64) error

	// Delete removes the row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error

	// Rekey moves the row stored under tempID to canonicalID. If a row
	// already exists under canonicalID the temporary row is dropped.
	Rekey(ctx context.Context, tempID, canonicalID string) error

	// Count returns the number of live memos.
	Count(ctx context.Context) (int, error)
}
