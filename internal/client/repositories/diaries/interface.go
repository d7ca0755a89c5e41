// Package diaries is the diary half of the client cache store. Rows are
// keyed by calendar date (YYYY-MM-DD) and follow the same tombstone and
// last-writer-wins rules as memos.
package diaries

import (
	"context"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, d *models.CachedDiary) error
	Merge(ctx context.Context, d models.Diary) (bool, error)
	Get(ctx context.Context, date string) (*models.CachedDiary, error)
	GetLive(ctx context.Context, date string) (*models.CachedDiary, error)
	// List returns live diaries, latest date first.
	List(ctx context.Context, limit, offset int) ([]models.CachedDiary, error)
	MarkDeleted(ctx context.Context, date string, at int64) error
	Delete(ctx context.Context, date string) error
	Count(ctx context.Context) (int, error)
}
