package operations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/timex"
	"github.com/google/uuid"
)

const selectColumns = `id, operation_type, entity_type, entity_id, payload_json, created_at,
	retried_count, next_attempt_at, status, last_error`

// queue order: creation time, then insertion order for equal timestamps
const orderBy = ` ORDER BY created_at, rowid`

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// WithClock returns a copy of the repository that stamps operations using now.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	return &SQLiteRepository{db: r.db, now: now}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, entityID string, p models.Payload) (*models.OfflineOperation, error) {
	data, err := models.EncodePayload(p)
	if err != nil {
		return nil, err
	}
	op := &models.OfflineOperation{
		ID:        uuid.NewString(),
		EntityID:  entityID,
		Payload:   p,
		CreatedAt: timex.Millis(r.now()),
		Status:    models.StatusPending,
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO offline_operations (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, '')`,
		op.ID, string(p.OperationType()), string(p.EntityType()), entityID, string(data), op.CreatedAt, string(op.Status))
	if err != nil {
		return nil, common.StorageError("enqueue operation", err)
	}
	return op, nil
}

func (r *SQLiteRepository) DequeueAll(ctx context.Context) ([]models.OfflineOperation, error) {
	return r.pending(ctx, `SELECT `+selectColumns+` FROM offline_operations
		WHERE status = 'pending'`+orderBy)
}

// pending loads pending operations. Rows whose payload cannot be decoded
// are moved to failed and left out of the result.
func (r *SQLiteRepository) pending(ctx context.Context, query string, args ...any) ([]models.OfflineOperation, error) {
	raw, err := r.load(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ops := make([]models.OfflineOperation, 0, len(raw))
	for _, row := range raw {
		op, err := row.decode()
		if err != nil {
			if derr := r.MarkDead(ctx, row.id, err.Error()); derr != nil {
				return nil, derr
			}
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.OfflineOperation, error) {
	raw, err := r.load(ctx, `SELECT `+selectColumns+` FROM offline_operations WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("operation %s: %w", id, common.ErrNotFound)
	}
	op, err := raw[0].decode()
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	return dbx.ExecOne(ctx, r.db, "remove operation "+id, `DELETE FROM offline_operations WHERE id = ?`, id)
}

func (r *SQLiteRepository) MarkFailedAttempt(ctx context.Context, id, lastErr string, nextAttemptAt int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `UPDATE offline_operations
		SET retried_count = retried_count + 1, next_attempt_at = ?, last_error = ?
		WHERE id = ? RETURNING retried_count`, nextAttemptAt, lastErr, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("operation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return 0, common.StorageError("record failed attempt", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id, lastErr string) error {
	return dbx.ExecOne(ctx, r.db, "fail operation "+id,
		`UPDATE offline_operations SET status = 'failed', last_error = ? WHERE id = ?`, lastErr, id)
}

// ListFailed returns failed operations oldest first. Operations whose
// payload cannot be decoded are returned with a nil Payload.
func (r *SQLiteRepository) ListFailed(ctx context.Context) ([]models.OfflineOperation, error) {
	raw, err := r.load(ctx, `SELECT `+selectColumns+` FROM offline_operations WHERE status = 'failed'`+orderBy)
	if err != nil {
		return nil, err
	}
	ops := make([]models.OfflineOperation, 0, len(raw))
	for _, row := range raw {
		op, err := row.decode()
		if err != nil {
			op = row.operation()
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (r *SQLiteRepository) Requeue(ctx context.Context, id string) error {
	return dbx.ExecOne(ctx, r.db, "requeue operation "+id, `UPDATE offline_operations
		SET status = 'pending', retried_count = 0, next_attempt_at = 0, last_error = ''
		WHERE id = ? AND status = 'failed'`, id)
}

func (r *SQLiteRepository) RemapEntity(ctx context.Context, entity models.EntityType, tempID, canonicalID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE offline_operations SET entity_id = ?
		WHERE entity_type = ? AND entity_id = ?`, canonicalID, string(entity), tempID)
	if err != nil {
		return 0, common.StorageError("remap operations", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.StorageError("remap operations", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, status models.OperationStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_operations WHERE status = ?`, string(status)).Scan(&n)
	if err != nil {
		return 0, common.StorageError("count operations", err)
	}
	return n, nil
}

func (r *SQLiteRepository) HasPending(ctx context.Context, entity models.EntityType, entityID string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM offline_operations
		WHERE entity_type = ? AND entity_id = ? AND status = 'pending')`, string(entity), entityID).Scan(&found)
	if err != nil {
		return false, common.StorageError("check pending operations", err)
	}
	return found, nil
}

type rawOperation struct {
	id, opType, entity, entityID, payload string
	createdAt, nextAttemptAt              int64
	retried                               int
	status, lastErr                       string
}

func (r rawOperation) operation() models.OfflineOperation {
	return models.OfflineOperation{
		ID:            r.id,
		EntityID:      r.entityID,
		CreatedAt:     r.createdAt,
		RetriedCount:  r.retried,
		NextAttemptAt: r.nextAttemptAt,
		Status:        models.OperationStatus(r.status),
		LastError:     r.lastErr,
	}
}

func (r rawOperation) decode() (models.OfflineOperation, error) {
	op := r.operation()
	p, err := models.DecodePayload(models.OperationType(r.opType), models.EntityType(r.entity), []byte(r.payload))
	if err != nil {
		return op, fmt.Errorf("operation %s: %w", r.id, err)
	}
	op.Payload = p
	return op, nil
}

// load reads rows fully before returning so callers may issue further
// statements on a single-connection pool.
func (r *SQLiteRepository) load(ctx context.Context, query string, args ...any) ([]rawOperation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StorageError("load operations", err)
	}
	defer rows.Close()

	var result []rawOperation
	for rows.Next() {
		var o rawOperation
		if err := rows.Scan(&o.id, &o.opType, &o.entity, &o.entityID, &o.payload, &o.createdAt,
			&o.retried, &o.nextAttemptAt, &o.status, &o.lastErr); err != nil {
			return nil, common.StorageError("scan operation", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError("load operations", err)
	}
	return result, nil
}
