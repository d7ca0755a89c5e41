package memos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
)

const memoColumns = `id, user_id, content, tags, archived, diary_date, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemo(s rowScanner) (*models.Memo, error) {
	var (
		m    models.Memo
		tags []byte
	)
	if err := s.Scan(&m.ID, &m.UserID, &m.Content, &tags, &m.Archived, &m.DiaryDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &m.Tags); err != nil {
			return nil, fmt.Errorf("%w: memo %s tags: %w", common.ErrSerialization, m.ID, err)
		}
	}
	return &m, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("%w: tags: %w", common.ErrSerialization, err)
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Memo) error {
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO memos (id, user_id, content, tags, archived, diary_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Content, tags, m.Archived, m.DiaryDate, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return common.StorageError("insert memo", err)
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, query, userID, id string) (*models.Memo, error) {
	m, err := scanMemo(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
		}
		if errors.Is(err, common.ErrSerialization) {
			return nil, err
		}
		return nil, common.StorageError("select memo", err)
	}
	return m, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Memo, error) {
	return r.get(ctx, `SELECT `+memoColumns+` FROM memos WHERE user_id = $1 AND id = $2`, userID, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID, id string) (*models.Memo, error) {
	return r.get(ctx, `SELECT `+memoColumns+` FROM memos WHERE user_id = $1 AND id = $2 FOR UPDATE`, userID, id)
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.MemoFilter, limit, offset int) ([]models.Memo, error) {
	query := `SELECT ` + memoColumns + ` FROM memos
		WHERE user_id = $1 AND ($2::text = 'all' OR archived = ($2::text = 'archived'))
		ORDER BY updated_at DESC, id
		LIMIT $3 OFFSET $4`

	return r.query(ctx, "list memos", query, userID, string(filter), limit, offset)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query as a case-insensitive substring of the content.
// LIKE wildcards in query are taken literally.
func (r *PostgresRepository) Search(ctx context.Context, userID, query string, limit int) ([]models.Memo, error) {
	q := `SELECT ` + memoColumns + ` FROM memos
		WHERE user_id = $1 AND content ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY updated_at DESC, id
		LIMIT $3`

	return r.query(ctx, "search memos", q, userID, likeEscaper.Replace(query), limit)
}

func (r *PostgresRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Memo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StorageError(op, err)
	}
	defer rows.Close()

	var out []models.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			if errors.Is(err, common.ErrSerialization) {
				return nil, err
			}
			return nil, common.StorageError(op, err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError(op, err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Memo) error {
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE memos
		SET content = $3, tags = $4, archived = $5, diary_date = $6, updated_at = $7
		WHERE user_id = $1 AND id = $2`

	return dbx.ExecOne(ctx, r.db, "update memo "+m.ID, query,
		m.UserID, m.ID, m.Content, tags, m.Archived, m.DiaryDate, m.UpdatedAt)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	return dbx.ExecOne(ctx, r.db, "delete memo "+id, `DELETE FROM memos WHERE user_id = $1 AND id = $2`, userID, id)
}
