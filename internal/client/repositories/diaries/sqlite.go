package diaries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
)

const selectColumns = `date, summary, mood_key, mood_score, cover_image_id, is_deleted, created_at, updated_at, synced_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or overwrites the diary for d.Date, keeping created_at.
func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.CachedDiary) error {
	query := `INSERT INTO cached_diaries (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			summary = excluded.summary,
			mood_key = excluded.mood_key,
			mood_score = excluded.mood_score,
			cover_image_id = excluded.cover_image_id,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at`
	_, err := r.db.ExecContext(ctx, query,
		d.Date, d.Summary, d.MoodKey, d.MoodScore, nullString(d.CoverImageID), d.Deleted,
		d.CreatedAt, d.UpdatedAt, d.SyncedAt)
	if err != nil {
		return common.StorageError("upsert diary", err)
	}
	return nil
}

// Merge mirrors a canonical diary unless the local row is at least as new.
func (r *SQLiteRepository) Merge(ctx context.Context, d models.Diary) (bool, error) {
	query := `INSERT INTO cached_diaries (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			summary = excluded.summary,
			mood_key = excluded.mood_key,
			mood_score = excluded.mood_score,
			cover_image_id = excluded.cover_image_id,
			is_deleted = 0,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at
		WHERE cached_diaries.updated_at < excluded.updated_at`
	res, err := r.db.ExecContext(ctx, query,
		d.Date, d.Summary, d.MoodKey, d.MoodScore, nullString(d.CoverImageID),
		d.CreatedAt, d.UpdatedAt, d.UpdatedAt)
	if err != nil {
		return false, common.StorageError("merge diary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.StorageError("merge diary", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, date string) (*models.CachedDiary, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM cached_diaries WHERE date = ?`, date)
}

func (r *SQLiteRepository) GetLive(ctx context.Context, date string) (*models.CachedDiary, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM cached_diaries WHERE date = ? AND is_deleted = 0`, date)
}

func (r *SQLiteRepository) get(ctx context.Context, query, date string) (*models.CachedDiary, error) {
	d, err := scanDiary(r.db.QueryRowContext(ctx, query, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	return d, err
}

func (r *SQLiteRepository) List(ctx context.Context, limit, offset int) ([]models.CachedDiary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM cached_diaries
		WHERE is_deleted = 0 ORDER BY date DESC LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, common.StorageError("list diaries", err)
	}
	defer rows.Close()

	var result []models.CachedDiary
	for rows.Next() {
		d, err := scanDiary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError("list diaries", err)
	}
	return result, nil
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, date string, at int64) error {
	return dbx.ExecOne(ctx, r.db, "tombstone diary "+date,
		`UPDATE cached_diaries SET is_deleted = 1, updated_at = MAX(updated_at, ?) WHERE date = ?`, at, date)
}

func (r *SQLiteRepository) Delete(ctx context.Context, date string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_diaries WHERE date = ?`, date); err != nil {
		return common.StorageError("delete diary", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cached_diaries WHERE is_deleted = 0`).Scan(&n); err != nil {
		return 0, common.StorageError("count diaries", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDiary(s scanner) (*models.CachedDiary, error) {
	var (
		d     models.CachedDiary
		cover sql.NullString
	)
	err := s.Scan(&d.Date, &d.Summary, &d.MoodKey, &d.MoodScore, &cover, &d.Deleted,
		&d.CreatedAt, &d.UpdatedAt, &d.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, common.StorageError("scan diary", err)
	}
	d.CoverImageID = cover.String
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
