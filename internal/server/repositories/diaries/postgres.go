package diaries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
)

const diaryColumns = `user_id, date, summary, mood_key, mood_score, cover_image_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiary(s rowScanner) (*models.Diary, error) {
	var d models.Diary
	err := s.Scan(&d.UserID, &d.Date, &d.Summary, &d.MoodKey, &d.MoodScore, &d.CoverImageID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Diary) error {
	query := `INSERT INTO diaries (` + diaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, date) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		d.UserID, d.Date, d.Summary, d.MoodKey, d.MoodScore, d.CoverImageID, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return common.StorageError("insert diary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.StorageError("insert diary", err)
	}
	if n == 0 {
		return fmt.Errorf("diary %s: %w", d.Date, common.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, query, userID, date string) (*models.Diary, error) {
	d, err := scanDiary(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
		}
		return nil, common.StorageError("select diary", err)
	}
	return d, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, date string) (*models.Diary, error) {
	return r.get(ctx, `SELECT `+diaryColumns+` FROM diaries WHERE user_id = $1 AND date = $2`, userID, date)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID, date string) (*models.Diary, error) {
	return r.get(ctx, `SELECT `+diaryColumns+` FROM diaries WHERE user_id = $1 AND date = $2 FOR UPDATE`, userID, date)
}

func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.Diary, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, common.StorageError("list diaries", err)
	}
	defer rows.Close()

	var out []models.Diary
	for rows.Next() {
		d, err := scanDiary(rows)
		if err != nil {
			return nil, common.StorageError("list diaries", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError("list diaries", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, d *models.Diary) error {
	query := `UPDATE diaries
		SET summary = $3, mood_key = $4, mood_score = $5, cover_image_id = $6, updated_at = $7
		WHERE user_id = $1 AND date = $2`

	return dbx.ExecOne(ctx, r.db, "update diary "+d.Date, query,
		d.UserID, d.Date, d.Summary, d.MoodKey, d.MoodScore, d.CoverImageID, d.UpdatedAt)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, date string) error {
	return dbx.ExecOne(ctx, r.db, "delete diary "+date, `DELETE FROM diaries WHERE user_id = $1 AND date = $2`, userID, date)
}
