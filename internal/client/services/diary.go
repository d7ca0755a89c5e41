package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/client/client"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/client/storage"
	"github.com/dmitrijs2005/memodiary/internal/common"
)

// DiaryService is the offline-aware diary API. Diaries are keyed by date,
// so there is no id remapping.
type DiaryService struct {
	store  *storage.Store
	remote client.Client
	sync   *SyncManager
}

func NewDiaryService(store *storage.Store, remote client.Client, sync *SyncManager) *DiaryService {
	return &DiaryService{store: store, remote: remote, sync: sync}
}

func (s *DiaryService) Get(ctx context.Context, date string) (*models.CachedDiary, error) {
	if err := models.ValidateDiaryDate(date); err != nil {
		return nil, err
	}

	if s.sync.IsOnline() {
		rctx, cancel := s.sync.remoteContext(ctx)
		diary, err := s.remote.GetDiary(rctx, date)
		cancel()
		switch {
		case err == nil:
			if _, err := s.store.Diaries.Merge(ctx, *diary); err != nil {
				return nil, err
			}
		case errors.Is(err, common.ErrNotFound):
		case client.IsTransient(err):
			s.sync.markUnreachable(ctx, err)
		default:
			return nil, fmt.Errorf("get diary %s: %w", date, err)
		}
	}
	return s.store.Diaries.GetLive(ctx, date)
}

// List returns live diaries, latest date first.
func (s *DiaryService) List(ctx context.Context, limit, offset int) ([]models.CachedDiary, error) {
	if s.sync.IsOnline() {
		rctx, cancel := s.sync.remoteContext(ctx)
		diaries, err := s.remote.ListDiaries(rctx, limit, offset)
		cancel()
		switch {
		case err == nil:
			for _, d := range diaries {
				if _, err := s.store.Diaries.Merge(ctx, d); err != nil {
					return nil, err
				}
			}
		case client.IsTransient(err):
			s.sync.markUnreachable(ctx, err)
		default:
			return nil, fmt.Errorf("list diaries: %w", err)
		}
	}
	return s.store.Diaries.List(ctx, limit, offset)
}

// Save creates the diary for date or replaces its contents. While
// operations for the date are queued the save is queued behind them.
func (s *DiaryService) Save(ctx context.Context, date string, d models.DiaryDraft) (*models.CachedDiary, error) {
	if err := models.ValidateDiaryDate(date); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	local, err := s.store.Diaries.Get(ctx, date)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	exists := err == nil && !local.Deleted
	direct, err := s.sync.writeThrough(ctx, models.EntityDiary, date)
	if err != nil {
		return nil, err
	}

	if direct {
		diary, err := s.sync.saveDiaryRemote(ctx, date, d, !exists)
		if err != nil {
			s.sync.markUnreachable(ctx, err)
			return nil, fmt.Errorf("save diary %s: %w", date, err)
		}
		row := models.MirrorDiary(*diary)
		if err := s.store.Diaries.Upsert(ctx, &row); err != nil {
			return nil, err
		}
		return &row, nil
	}

	var row models.CachedDiary
	err = s.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		local, err := tx.Diaries.Get(ctx, date)
		now := s.sync.nowMillis()
		var payload models.Payload
		switch {
		case errors.Is(err, common.ErrNotFound):
			row = models.CachedDiary{Diary: d.Apply(models.Diary{Date: date, CreatedAt: now, UpdatedAt: now})}
			payload = &models.DiaryCreate{Draft: d}
		case err != nil:
			return err
		case local.Deleted:
			// the tombstone's queued delete replays first, so this is a
			// fresh create
			row = models.CachedDiary{Diary: d.Apply(models.Diary{Date: date, CreatedAt: now})}
			row.UpdatedAt = max(now, local.UpdatedAt+1)
			payload = &models.DiaryCreate{Draft: d}
		default:
			row = models.CachedDiary{Diary: d.Apply(local.Diary), SyncedAt: local.SyncedAt}
			row.UpdatedAt = max(now, local.UpdatedAt+1)
			payload = &models.DiaryUpdate{Draft: d}
		}
		if err := tx.Diaries.Upsert(ctx, &row); err != nil {
			return err
		}
		_, err = tx.Operations.Enqueue(ctx, date, payload)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("save diary %s offline: %w", date, err)
	}
	return &row, nil
}

// Delete removes the diary for date. Offline, the row is tombstoned until
// the queued delete is confirmed.
func (s *DiaryService) Delete(ctx context.Context, date string) error {
	if err := models.ValidateDiaryDate(date); err != nil {
		return err
	}
	direct, err := s.sync.writeThrough(ctx, models.EntityDiary, date)
	if err != nil {
		return err
	}

	if direct {
		rctx, cancel := s.sync.remoteContext(ctx)
		err := s.remote.DeleteDiary(rctx, date)
		cancel()
		if errors.Is(err, common.ErrNotFound) {
			if _, lerr := s.store.Diaries.Get(ctx, date); lerr != nil {
				return fmt.Errorf("delete diary %s: %w", date, err)
			}
			err = nil
		}
		if err != nil {
			s.sync.markUnreachable(ctx, err)
			return fmt.Errorf("delete diary %s: %w", date, err)
		}
		return s.store.Diaries.Delete(ctx, date)
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if _, err := tx.Diaries.GetLive(ctx, date); err != nil {
			return err
		}
		if err := tx.Diaries.MarkDeleted(ctx, date, s.sync.nowMillis()); err != nil {
			return err
		}
		_, err := tx.Operations.Enqueue(ctx, date, &models.DiaryDelete{})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete diary %s offline: %w", date, err)
	}
	return nil
}
