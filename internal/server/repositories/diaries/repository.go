// Package diaries stores server-side diaries in PostgreSQL, keyed by
// (user id, date).
package diaries

import (
	"context"

	"github.com/dmitrijs2005/memodiary/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrAlreadyExists when the date is taken.
	Create(ctx context.Context, d *models.Diary) error
	Get(ctx context.Context, userID, date string) (*models.Diary, error)
	GetForUpdate(ctx context.Context, userID, date string) (*models.Diary, error)
	// List returns diaries newest date first.
	List(ctx context.Context, userID string, limit, offset int) ([]models.Diary, error)
	Update(ctx context.Context, d *models.Diary) error
	Delete(ctx context.Context, userID, date string) error
}
