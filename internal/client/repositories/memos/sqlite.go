package memos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
)

const selectColumns = `id, content, tags_json, is_archived, is_deleted, diary_date, created_at, updated_at, synced_at`

// SQLiteRepository implements Repository on top of the cached_memos table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, m *models.CachedMemo) error {
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return err
	}
	query := `INSERT INTO cached_memos (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			tags_json = excluded.tags_json,
			is_archived = excluded.is_archived,
			is_deleted = excluded.is_deleted,
			diary_date = excluded.diary_date,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at`
	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.Content, tags, m.Archived, m.Deleted, nullString(m.DiaryDate),
		m.CreatedAt, m.UpdatedAt, m.SyncedAt)
	if err != nil {
		return common.StorageError("upsert memo", err)
	}
	return nil
}

func (r *SQLiteRepository) Merge(ctx context.Context, m models.Memo) (bool, error) {
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return false, err
	}
	query := `INSERT INTO cached_memos (` + selectColumns + `)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			tags_json = excluded.tags_json,
			is_archived = excluded.is_archived,
			is_deleted = 0,
			diary_date = excluded.diary_date,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at
		WHERE cached_memos.updated_at < excluded.updated_at`
	res, err := r.db.ExecContext(ctx, query,
		m.ID, m.Content, tags, m.Archived, nullString(m.DiaryDate),
		m.CreatedAt, m.UpdatedAt, m.UpdatedAt)
	if err != nil {
		return false, common.StorageError("merge memo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.StorageError("merge memo", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.CachedMemo, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM cached_memos WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetLive(ctx context.Context, id string) (*models.CachedMemo, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM cached_memos WHERE id = ? AND is_deleted = 0`, id)
}

func (r *SQLiteRepository) get(ctx context.Context, query, id string) (*models.CachedMemo, error) {
	m, err := scanMemo(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLiteRepository) List(ctx context.Context, q models.MemoQuery) ([]models.CachedMemo, error) {
	var (
		where = `is_deleted = 0`
		args  []any
	)
	switch q.Filter {
	case models.FilterArchived:
		where += ` AND is_archived = 1`
	case models.FilterAll:
	default:
		where += ` AND is_archived = 0`
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := max(q.Offset, 0)
	args = append(args, limit, offset)

	query := `SELECT ` + selectColumns + ` FROM cached_memos WHERE ` + where +
		` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`
	return r.query(ctx, "list memos", query, args...)
}

func (r *SQLiteRepository) Search(ctx context.Context, text string, limit int) ([]models.CachedMemo, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + escapeLike(text) + "%"
	query := `SELECT ` + selectColumns + ` FROM cached_memos
		WHERE is_deleted = 0 AND (content LIKE ? ESCAPE '\' OR tags_json LIKE ? ESCAPE '\')
		ORDER BY updated_at DESC, id LIMIT ?`
	return r.query(ctx, "search memos", query, pattern, pattern, limit)
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, at int64) error {
	return dbx.ExecOne(ctx, r.db, "tombstone memo "+id,
		`UPDATE cached_memos SET is_deleted = 1, updated_at = MAX(updated_at, ?) WHERE id = ?`, at, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_memos WHERE id = ?`, id); err != nil {
		return common.StorageError("delete memo", err)
	}
	return nil
}

func (r *SQLiteRepository) Rekey(ctx context.Context, tempID, canonicalID string) error {
	if tempID == canonicalID {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `UPDATE cached_memos SET id = ?
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM cached_memos WHERE id = ?)`,
		canonicalID, tempID, canonicalID)
	if err != nil {
		return common.StorageError("rekey memo", err)
	}
	return r.Delete(ctx, tempID)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cached_memos WHERE is_deleted = 0`).Scan(&n); err != nil {
		return 0, common.StorageError("count memos", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, op, query string, args ...any) ([]models.CachedMemo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StorageError(op, err)
	}
	defer rows.Close()

	var result []models.CachedMemo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError(op, err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemo(s scanner) (*models.CachedMemo, error) {
	var (
		m         models.CachedMemo
		tags      string
		diaryDate sql.NullString
	)
	err := s.Scan(&m.ID, &m.Content, &tags, &m.Archived, &m.Deleted, &diaryDate,
		&m.CreatedAt, &m.UpdatedAt, &m.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, common.StorageError("scan memo", err)
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("memo %s tags: %w: %w", m.ID, common.ErrSerialization, err)
	}
	if len(m.Tags) == 0 {
		m.Tags = nil
	}
	m.DiaryDate = diaryDate.String
	return &m, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w: %w", common.ErrSerialization, err)
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
