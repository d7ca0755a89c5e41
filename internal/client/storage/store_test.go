package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "  ", nil)
	require.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Memos.Upsert(ctx, &models.CachedMemo{Memo: models.Memo{ID: "m1", Content: "x", UpdatedAt: 1}}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	m, err := s.Memos.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "x", m.Content)
}

func TestOpen_QueueUsesGivenClock(t *testing.T) {
	ctx := context.Background()
	at := time.UnixMilli(42_000)
	s, err := Open(ctx, filepath.Join(t.TempDir(), "cache.db"), func() time.Time { return at })
	require.NoError(t, err)
	defer s.Close()

	err = s.WithTx(ctx, func(ctx context.Context, tx *Store) error {
		_, err := tx.Operations.Enqueue(ctx, "m1", &models.MemoDelete{})
		return err
	})
	require.NoError(t, err)

	ops, err := s.Operations.DequeueAll(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, int64(42_000), ops[0].CreatedAt)
}

func TestWithTx_CommitsCacheWriteAndQueueTogether(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(ctx context.Context, tx *Store) error {
		if err := tx.Memos.Upsert(ctx, &models.CachedMemo{Memo: models.Memo{ID: "tmp", Content: "offline", UpdatedAt: 5}}); err != nil {
			return err
		}
		_, err := tx.Operations.Enqueue(ctx, "tmp", &models.MemoCreate{Draft: models.MemoDraft{Content: "offline"}})
		return err
	})
	require.NoError(t, err)

	_, err = s.Memos.Get(ctx, "tmp")
	require.NoError(t, err)
	n, err := s.Operations.Count(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx *Store) error {
		if err := tx.Memos.Upsert(ctx, &models.CachedMemo{Memo: models.Memo{ID: "tmp", Content: "offline", UpdatedAt: 5}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Memos.Get(ctx, "tmp")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
