package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memodiary/internal/timex"
)

type DiaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewDiaryService(db *sql.DB, repomanager repomanager.RepositoryManager) *DiaryService {
	return &DiaryService{db: db, repomanager: repomanager, now: time.Now}
}

// DiaryInput is the editable part of a diary.
type DiaryInput struct {
	Summary      string
	MoodKey      string
	MoodScore    int
	CoverImageID string
}

func (in DiaryInput) validate(date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	if in.MoodScore < 0 {
		return fmt.Errorf("mood score %d is negative: %w", in.MoodScore, common.ErrInvalidInput)
	}
	return nil
}

func (in DiaryInput) apply(d models.Diary) models.Diary {
	d.Summary = in.Summary
	d.MoodKey = in.MoodKey
	d.MoodScore = in.MoodScore
	d.CoverImageID = in.CoverImageID
	return d
}

// Create adds the diary of date. It fails with common.ErrAlreadyExists
// when the user already has one.
func (s *DiaryService) Create(ctx context.Context, userID, date string, in DiaryInput) (*models.Diary, error) {
	if err := in.validate(date); err != nil {
		return nil, err
	}

	ts := timex.Millis(s.now())
	d := in.apply(models.Diary{UserID: userID, Date: date, CreatedAt: ts, UpdatedAt: ts})
	if err := s.repomanager.Diaries(s.db).Create(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Update replaces the editable fields of an existing diary.
func (s *DiaryService) Update(ctx context.Context, userID, date string, in DiaryInput) (*models.Diary, error) {
	if err := in.validate(date); err != nil {
		return nil, err
	}

	var out *models.Diary
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Diaries(tx)

		cur, err := repo.GetForUpdate(ctx, userID, date)
		if err != nil {
			return err
		}

		d := in.apply(*cur)
		d.UpdatedAt = nextUpdatedAt(s.now(), cur.UpdatedAt)
		if err := repo.Update(ctx, &d); err != nil {
			return err
		}
		out = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DiaryService) Get(ctx context.Context, userID, date string) (*models.Diary, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repomanager.Diaries(s.db).Get(ctx, userID, date)
}

func (s *DiaryService) List(ctx context.Context, userID string, limit, offset int) ([]models.Diary, error) {
	return s.repomanager.Diaries(s.db).List(ctx, userID, pageLimit(limit), pageOffset(offset))
}

func (s *DiaryService) Delete(ctx context.Context, userID, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return s.repomanager.Diaries(s.db).Delete(ctx, userID, date)
}
