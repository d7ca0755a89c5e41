// Package memos stores server-side memos in PostgreSQL.
package memos

import (
	"context"

	"github.com/dmitrijs2005/memodiary/internal/server/models"
)

// Repository is scoped per call by user id; a memo of another user is
// reported as common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, m *models.Memo) error
	Get(ctx context.Context, userID, id string) (*models.Memo, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID, id string) (*models.Memo, error)
	List(ctx context.Context, userID string, filter models.MemoFilter, limit, offset int) ([]models.Memo, error)
	Search(ctx context.Context, userID, query string, limit int) ([]models.Memo, error)
	Update(ctx context.Context, m *models.Memo) error
	Delete(ctx context.Context, userID, id string) error
}
