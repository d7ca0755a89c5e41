package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitrijs2005/memodiary/internal/client/client"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/client/storage"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/timex"
)

type failureKind int

const (
	// failureTransient keeps the operation queued behind a backoff gate.
	failureTransient failureKind = iota
	// failurePermanent moves the operation to failed at once.
	failurePermanent
	// failureFatal aborts the replay cycle.
	failureFatal
)

func classify(ctx context.Context, err error) failureKind {
	switch {
	case ctx.Err() != nil,
		errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, common.ErrStorage):
		return failureFatal
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, client.ErrInvalidRequest),
		errors.Is(err, client.ErrConflict),
		errors.Is(err, common.ErrSerialization),
		errors.Is(err, common.ErrInvalidInput):
		return failurePermanent
	default:
		return failureTransient
	}
}

func entityKey(entity models.EntityType, id string) string {
	return string(entity) + ":" + id
}

// replay applies queued operations in order and returns how many
// succeeded. Operations are independent, except that an entity whose
// earlier operation failed or is still backing off keeps its later
// operations queued.
func (m *SyncManager) replay(ctx context.Context) (int, error) {
	ops, err := m.store.Operations.DequeueAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}
	now := m.nowMillis()

	var (
		applied int
		blocked = map[string]bool{}
		// temp id -> canonical id for creates confirmed in this cycle
		remapped = map[string]string{}
	)
	for _, op := range ops {
		if canonical, ok := remapped[entityKey(op.EntityType(), op.EntityID)]; ok {
			op.EntityID = canonical
		}
		key := entityKey(op.EntityType(), op.EntityID)
		if blocked[key] {
			continue
		}
		if op.NextAttemptAt > now {
			blocked[key] = true
			continue
		}

		err := m.apply(ctx, op, remapped)
		if err == nil {
			applied++
			continue
		}

		kind := classify(ctx, err)
		if kind == failureFatal {
			return applied, fmt.Errorf("replay %s %s %s: %w", op.EntityType(), op.OperationType(), op.EntityID, err)
		}
		blocked[key] = true
		if err := m.recordFailure(ctx, op, err, kind); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

func (m *SyncManager) recordFailure(ctx context.Context, op models.OfflineOperation, cause error, kind failureKind) error {
	log := m.log.With("op", op.ID, "entity", op.EntityType(), "kind", op.OperationType(), "id", op.EntityID)

	if kind == failurePermanent {
		log.Warn(ctx, "operation rejected, moved to failed", "error", cause)
		return m.store.Operations.MarkDead(ctx, op.ID, cause.Error())
	}

	attempt := op.RetriedCount + 1
	next := timex.Millis(m.opts.Now().Add(m.retryDelay(attempt)))
	if _, err := m.store.Operations.MarkFailedAttempt(ctx, op.ID, cause.Error(), next); err != nil {
		return err
	}
	if attempt >= m.opts.MaxRetries {
		log.Warn(ctx, "operation exhausted retries, moved to failed", "attempts", attempt, "error", cause)
		return m.store.Operations.MarkDead(ctx, op.ID, cause.Error())
	}
	log.Info(ctx, "operation failed, will retry", "attempt", attempt, "error", cause)
	return nil
}

// retryDelay is the jittered exponential delay before the given attempt.
func (m *SyncManager) retryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.opts.BackoffInitial
	b.MaxInterval = m.opts.BackoffMax
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.Reset()

	d := b.InitialInterval
	for range attempt {
		d = b.NextBackOff()
	}
	return d
}

func (m *SyncManager) apply(ctx context.Context, op models.OfflineOperation, remapped map[string]string) error {
	switch p := op.Payload.(type) {
	case *models.MemoCreate:
		return m.applyMemoCreate(ctx, op, p, remapped)
	case *models.MemoUpdate:
		return m.applyMemoUpdate(ctx, op, p)
	case *models.MemoDelete:
		return m.applyMemoDelete(ctx, op)
	case *models.DiaryCreate:
		return m.applyDiarySave(ctx, op, p.Draft, true)
	case *models.DiaryUpdate:
		return m.applyDiarySave(ctx, op, p.Draft, false)
	case *models.DiaryDelete:
		return m.applyDiaryDelete(ctx, op)
	default:
		return fmt.Errorf("unsupported payload %T: %w", op.Payload, common.ErrSerialization)
	}
}

func (m *SyncManager) applyMemoCreate(ctx context.Context, op models.OfflineOperation, p *models.MemoCreate, remapped map[string]string) error {
	rctx, cancel := m.remoteContext(ctx)
	memo, err := m.remote.CreateMemo(rctx, p.Draft)
	cancel()
	if err != nil {
		return err
	}

	tempID := op.EntityID
	err = m.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if err := tx.Memos.Rekey(ctx, tempID, memo.ID); err != nil {
			return err
		}
		if err := mirrorMemo(ctx, tx, *memo); err != nil {
			return err
		}
		if tempID != memo.ID {
			if err := tx.IDMap.Put(ctx, models.IDMapping{
				TempID:      tempID,
				CanonicalID: memo.ID,
				Entity:      models.EntityMemo,
				CreatedAt:   m.nowMillis(),
			}); err != nil {
				return err
			}
			if _, err := tx.Operations.RemapEntity(ctx, models.EntityMemo, tempID, memo.ID); err != nil {
				return err
			}
		}
		return tx.Operations.Remove(ctx, op.ID)
	})
	if err != nil {
		return err
	}
	remapped[entityKey(models.EntityMemo, tempID)] = memo.ID
	return nil
}

func (m *SyncManager) applyMemoUpdate(ctx context.Context, op models.OfflineOperation, p *models.MemoUpdate) error {
	rctx, cancel := m.remoteContext(ctx)
	memo, err := m.remote.UpdateMemo(rctx, op.EntityID, p.Patch)
	cancel()
	if err != nil {
		return err
	}
	return m.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if err := mirrorMemo(ctx, tx, *memo); err != nil {
			return err
		}
		return tx.Operations.Remove(ctx, op.ID)
	})
}

func (m *SyncManager) applyMemoDelete(ctx context.Context, op models.OfflineOperation) error {
	rctx, cancel := m.remoteContext(ctx)
	err := m.remote.DeleteMemo(rctx, op.EntityID)
	cancel()
	// already gone remotely counts as confirmed
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return m.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if err := tx.Memos.Delete(ctx, op.EntityID); err != nil {
			return err
		}
		return tx.Operations.Remove(ctx, op.ID)
	})
}

// applyDiarySave replays a diary create or update. Diaries are keyed by
// date on both sides, so a create that finds an existing diary becomes an
// update and an update that finds none becomes a create.
func (m *SyncManager) applyDiarySave(ctx context.Context, op models.OfflineOperation, draft models.DiaryDraft, create bool) error {
	diary, err := m.saveDiaryRemote(ctx, op.EntityID, draft, create)
	if err != nil {
		return err
	}
	return m.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if err := mirrorDiary(ctx, tx, *diary); err != nil {
			return err
		}
		return tx.Operations.Remove(ctx, op.ID)
	})
}

func (m *SyncManager) saveDiaryRemote(ctx context.Context, date string, draft models.DiaryDraft, create bool) (*models.Diary, error) {
	call := func(create bool) (*models.Diary, error) {
		rctx, cancel := m.remoteContext(ctx)
		defer cancel()
		if create {
			return m.remote.CreateDiary(rctx, date, draft)
		}
		return m.remote.UpdateDiary(rctx, date, draft)
	}

	diary, err := call(create)
	switch {
	case create && errors.Is(err, client.ErrConflict):
		return call(false)
	case !create && errors.Is(err, common.ErrNotFound):
		return call(true)
	}
	return diary, err
}

func (m *SyncManager) applyDiaryDelete(ctx context.Context, op models.OfflineOperation) error {
	rctx, cancel := m.remoteContext(ctx)
	err := m.remote.DeleteDiary(rctx, op.EntityID)
	cancel()
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return m.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		// a diary saved again for the same date after the delete is no
		// longer tombstoned and stays
		local, err := tx.Diaries.Get(ctx, op.EntityID)
		switch {
		case errors.Is(err, common.ErrNotFound):
		case err != nil:
			return err
		case local.Deleted:
			if err := tx.Diaries.Delete(ctx, op.EntityID); err != nil {
				return err
			}
		}
		return tx.Operations.Remove(ctx, op.ID)
	})
}

// mirrorMemo stores a canonical memo confirmed by the remote. A local
// tombstone survives so the queued delete still hides the row.
func mirrorMemo(ctx context.Context, tx *storage.Store, memo models.Memo) error {
	row := models.MirrorMemo(memo)
	local, err := tx.Memos.Get(ctx, memo.ID)
	switch {
	case err == nil:
		row.Deleted = local.Deleted
	case !errors.Is(err, common.ErrNotFound):
		return err
	}
	return tx.Memos.Upsert(ctx, &row)
}

func mirrorDiary(ctx context.Context, tx *storage.Store, diary models.Diary) error {
	row := models.MirrorDiary(diary)
	local, err := tx.Diaries.Get(ctx, diary.Date)
	switch {
	case err == nil:
		row.Deleted = local.Deleted
	case !errors.Is(err, common.ErrNotFound):
		return err
	}
	return tx.Diaries.Upsert(ctx, &row)
}
