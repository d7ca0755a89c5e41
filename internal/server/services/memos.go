package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memodiary/internal/timex"
	"github.com/google/uuid"
)

type MemoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewMemoService(db *sql.DB, repomanager repomanager.RepositoryManager) *MemoService {
	return &MemoService{db: db, repomanager: repomanager, now: time.Now}
}

// MemoInput is the content of a new memo.
type MemoInput struct {
	Content   string
	Tags      []string
	DiaryDate string
}

func (in MemoInput) validate() error {
	if in.Content == "" {
		return fmt.Errorf("memo content is empty: %w", common.ErrInvalidInput)
	}
	if in.DiaryDate != "" {
		return validateDate(in.DiaryDate)
	}
	return nil
}

func validatePatch(p models.MemoPatch) error {
	if p.Content != nil && *p.Content == "" {
		return fmt.Errorf("memo content is empty: %w", common.ErrInvalidInput)
	}
	if p.DiaryDate != nil && *p.DiaryDate != "" {
		return validateDate(*p.DiaryDate)
	}
	return nil
}

func (s *MemoService) Create(ctx context.Context, userID string, in MemoInput) (*models.Memo, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ts := timex.Millis(s.now())
	m := &models.Memo{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   in.Content,
		Tags:      in.Tags,
		DiaryDate: in.DiaryDate,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.repomanager.Memos(s.db).Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MemoService) Get(ctx context.Context, userID, id string) (*models.Memo, error) {
	id, err := memoID(id)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Memos(s.db).Get(ctx, userID, id)
}

// List returns a page of memos, most recently updated first. An empty
// filter selects unarchived memos.
func (s *MemoService) List(ctx context.Context, userID string, filter models.MemoFilter, limit, offset int) ([]models.Memo, error) {
	switch filter {
	case "":
		filter = models.FilterUnarchived
	case models.FilterUnarchived, models.FilterArchived, models.FilterAll:
	default:
		return nil, fmt.Errorf("unknown memo filter %q: %w", filter, common.ErrInvalidInput)
	}
	return s.repomanager.Memos(s.db).List(ctx, userID, filter, pageLimit(limit), pageOffset(offset))
}

func (s *MemoService) Search(ctx context.Context, userID, query string, limit int) ([]models.Memo, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty: %w", common.ErrInvalidInput)
	}
	return s.repomanager.Memos(s.db).Search(ctx, userID, query, pageLimit(limit))
}

// Update applies p under a row lock and bumps updated_at.
func (s *MemoService) Update(ctx context.Context, userID, id string, p models.MemoPatch) (*models.Memo, error) {
	if err := validatePatch(p); err != nil {
		return nil, err
	}
	id, err := memoID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Memo
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Memos(tx)

		cur, err := repo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}

		m := p.Apply(*cur)
		m.UpdatedAt = nextUpdatedAt(s.now(), cur.UpdatedAt)
		if err := repo.Update(ctx, &m); err != nil {
			return err
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MemoService) Delete(ctx context.Context, userID, id string) error {
	id, err := memoID(id)
	if err != nil {
		return err
	}
	return s.repomanager.Memos(s.db).Delete(ctx, userID, id)
}
