package client

import (
	"context"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
)

// Client is the remote memo/diary API. Returned records are canonical:
// ids and updated_at are assigned by the service.
type Client interface {
	Close() error

	CreateMemo(ctx context.Context, d models.MemoDraft) (*models.Memo, error)
	GetMemo(ctx context.Context, id string) (*models.Memo, error)
	ListMemos(ctx context.Context, q models.MemoQuery) ([]models.Memo, error)
	UpdateMemo(ctx context.Context, id string, p models.MemoPatch) (*models.Memo, error)
	DeleteMemo(ctx context.Context, id string) error
	SearchMemos(ctx context.Context, query string, limit int) ([]models.Memo, error)

	CreateDiary(ctx context.Context, date string, d models.DiaryDraft) (*models.Diary, error)
	UpdateDiary(ctx context.Context, date string, d models.DiaryDraft) (*models.Diary, error)
	GetDiary(ctx context.Context, date string) (*models.Diary, error)
	ListDiaries(ctx context.Context, limit, offset int) ([]models.Diary, error)
	DeleteDiary(ctx context.Context, date string) error
}
