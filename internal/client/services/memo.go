package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/client/client"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/client/storage"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/google/uuid"
)

// MemoService is the offline-aware memo API used by the command layer.
type MemoService struct {
	store  *storage.Store
	remote client.Client
	sync   *SyncManager
}

func NewMemoService(store *storage.Store, remote client.Client, sync *SyncManager) *MemoService {
	return &MemoService{store: store, remote: remote, sync: sync}
}

// Get returns a live memo. Temporary ids of memos created offline are
// resolved to their canonical id once synced. While online the remote
// copy is merged in first; common.ErrNotFound means the memo exists
// neither remotely nor locally.
func (s *MemoService) Get(ctx context.Context, id string) (*models.CachedMemo, error) {
	id, err := s.store.IDMap.Resolve(ctx, models.EntityMemo, id)
	if err != nil {
		return nil, err
	}

	if s.sync.IsOnline() {
		rctx, cancel := s.sync.remoteContext(ctx)
		memo, err := s.remote.GetMemo(rctx, id)
		cancel()
		switch {
		case err == nil:
			if _, err := s.store.Memos.Merge(ctx, *memo); err != nil {
				return nil, err
			}
		case errors.Is(err, common.ErrNotFound):
		case client.IsTransient(err):
			s.sync.markUnreachable(ctx, err)
		default:
			return nil, fmt.Errorf("get memo %s: %w", id, err)
		}
	}
	return s.store.Memos.GetLive(ctx, id)
}

// List returns live memos from the cache, refreshed from the remote when
// online.
func (s *MemoService) List(ctx context.Context, q models.MemoQuery) ([]models.CachedMemo, error) {
	if s.sync.IsOnline() {
		rctx, cancel := s.sync.remoteContext(ctx)
		memos, err := s.remote.ListMemos(rctx, q)
		cancel()
		if err := s.mergeRemote(ctx, memos, err); err != nil {
			return nil, fmt.Errorf("list memos: %w", err)
		}
	}
	return s.store.Memos.List(ctx, q)
}

// Search matches content and tags.
func (s *MemoService) Search(ctx context.Context, query string, limit int) ([]models.CachedMemo, error) {
	if s.sync.IsOnline() {
		rctx, cancel := s.sync.remoteContext(ctx)
		memos, err := s.remote.SearchMemos(rctx, query, limit)
		cancel()
		if err := s.mergeRemote(ctx, memos, err); err != nil {
			return nil, fmt.Errorf("search memos: %w", err)
		}
	}
	return s.store.Memos.Search(ctx, query, limit)
}

// mergeRemote merges a remote read result. A transient remote failure
// switches to offline and falls back to the cache.
func (s *MemoService) mergeRemote(ctx context.Context, memos []models.Memo, remoteErr error) error {
	if remoteErr != nil {
		if client.IsTransient(remoteErr) {
			s.sync.markUnreachable(ctx, remoteErr)
			return nil
		}
		return remoteErr
	}
	for _, memo := range memos {
		if _, err := s.store.Memos.Merge(ctx, memo); err != nil {
			return err
		}
	}
	return nil
}

// Create adds a memo. Offline, the memo gets a provisional id and a
// create operation is queued.
func (s *MemoService) Create(ctx context.Context, d models.MemoDraft) (*models.CachedMemo, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if s.sync.IsOnline() {
		rctx, cancel := s.sync.remoteContext(ctx)
		memo, err := s.remote.CreateMemo(rctx, d)
		cancel()
		if err != nil {
			s.sync.markUnreachable(ctx, err)
			return nil, fmt.Errorf("create memo: %w", err)
		}
		row := models.MirrorMemo(*memo)
		if err := s.store.Memos.Upsert(ctx, &row); err != nil {
			return nil, err
		}
		return &row, nil
	}

	now := s.sync.nowMillis()
	row := models.CachedMemo{Memo: models.Memo{
		ID:        uuid.NewString(),
		Content:   d.Content,
		Tags:      d.Tags,
		DiaryDate: d.DiaryDate,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if err := tx.Memos.Upsert(ctx, &row); err != nil {
			return err
		}
		_, err := tx.Operations.Enqueue(ctx, row.ID, &models.MemoCreate{Draft: d})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create memo offline: %w", err)
	}
	return &row, nil
}

// Update applies a partial update. A memo with queued operations is
// updated through the queue even when online.
func (s *MemoService) Update(ctx context.Context, id string, p models.MemoPatch) (*models.CachedMemo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	id, err := s.store.IDMap.Resolve(ctx, models.EntityMemo, id)
	if err != nil {
		return nil, err
	}
	direct, err := s.sync.writeThrough(ctx, models.EntityMemo, id)
	if err != nil {
		return nil, err
	}

	if direct {
		rctx, cancel := s.sync.remoteContext(ctx)
		memo, err := s.remote.UpdateMemo(rctx, id, p)
		cancel()
		if err != nil {
			s.sync.markUnreachable(ctx, err)
			return nil, fmt.Errorf("update memo %s: %w", id, err)
		}
		row := models.MirrorMemo(*memo)
		if err := s.store.Memos.Upsert(ctx, &row); err != nil {
			return nil, err
		}
		return &row, nil
	}

	var row models.CachedMemo
	err = s.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		local, err := tx.Memos.GetLive(ctx, id)
		if err != nil {
			return err
		}
		row = models.CachedMemo{Memo: p.Apply(local.Memo), SyncedAt: local.SyncedAt}
		row.UpdatedAt = max(s.sync.nowMillis(), local.UpdatedAt+1)
		if err := tx.Memos.Upsert(ctx, &row); err != nil {
			return err
		}
		_, err = tx.Operations.Enqueue(ctx, id, &models.MemoUpdate{Patch: p})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update memo %s offline: %w", id, err)
	}
	return &row, nil
}

func (s *MemoService) Archive(ctx context.Context, id string, archived bool) (*models.CachedMemo, error) {
	return s.Update(ctx, id, models.MemoPatch{Archived: &archived})
}

// Delete removes a memo. Offline, or while operations for the memo are
// still queued, the cached row is tombstoned until the queued delete is
// confirmed.
func (s *MemoService) Delete(ctx context.Context, id string) error {
	id, err := s.store.IDMap.Resolve(ctx, models.EntityMemo, id)
	if err != nil {
		return err
	}
	direct, err := s.sync.writeThrough(ctx, models.EntityMemo, id)
	if err != nil {
		return err
	}

	if direct {
		rctx, cancel := s.sync.remoteContext(ctx)
		err := s.remote.DeleteMemo(rctx, id)
		cancel()
		if errors.Is(err, common.ErrNotFound) {
			if _, lerr := s.store.Memos.Get(ctx, id); lerr != nil {
				return fmt.Errorf("delete memo %s: %w", id, err)
			}
			err = nil
		}
		if err != nil {
			s.sync.markUnreachable(ctx, err)
			return fmt.Errorf("delete memo %s: %w", id, err)
		}
		return s.store.Memos.Delete(ctx, id)
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *storage.Store) error {
		if _, err := tx.Memos.GetLive(ctx, id); err != nil {
			return err
		}
		if err := tx.Memos.MarkDeleted(ctx, id, s.sync.nowMillis()); err != nil {
			return err
		}
		_, err := tx.Operations.Enqueue(ctx, id, &models.MemoDelete{})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete memo %s offline: %w", id, err)
	}
	return nil
}
