package operations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/migrations"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	db.SetMaxOpenConns(1)
	return db
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func ids(ops []models.OfflineOperation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.ID)
	}
	return out
}

func TestEnqueue_AssignsTimestampAndZeroRetries(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t)).WithClock(fixedClock(1000))
	ctx := context.Background()

	op, err := r.Enqueue(ctx, "m1", &models.MemoCreate{Draft: models.MemoDraft{Content: "hi"}})
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, int64(1000), op.CreatedAt)
	assert.Zero(t, op.RetriedCount)
	assert.Equal(t, models.StatusPending, op.Status)

	got, err := r.Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, op, got)
	assert.Equal(t, models.OpCreate, got.OperationType())
	assert.Equal(t, models.EntityMemo, got.EntityType())
}

func TestDequeueAll_FIFOWithoutMerging(t *testing.T) {
	db := setupDB(t)
	base := NewSQLiteRepository(db)
	ctx := context.Background()

	var want []string
	// same timestamp for the first two: insertion order must break the tie
	for _, step := range []struct {
		at int64
		p  models.Payload
	}{
		{500, &models.MemoCreate{Draft: models.MemoDraft{Content: "a"}}},
		{500, &models.MemoUpdate{Patch: models.MemoPatch{}}},
		{600, &models.MemoUpdate{Patch: models.MemoPatch{}}},
		{700, &models.MemoDelete{}},
	} {
		op, err := base.WithClock(fixedClock(step.at)).Enqueue(ctx, "m1", step.p)
		require.NoError(t, err)
		want = append(want, op.ID)
	}

	got, err := base.DequeueAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, ids(got))
	assert.IsType(t, &models.MemoCreate{}, got[0].Payload)
	assert.IsType(t, &models.MemoDelete{}, got[3].Payload)

	// dequeue does not consume
	got, err = base.DequeueAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestRemove_ExactlyOnce(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	op, err := r.Enqueue(ctx, "2024-01-01", &models.DiaryDelete{})
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, op.ID))
	assert.ErrorIs(t, r.Remove(ctx, op.ID), common.ErrNotFound)

	n, err := r.Count(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBackoffGateAndDeadLetter(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t)).WithClock(fixedClock(100))
	ctx := context.Background()

	op, err := r.Enqueue(ctx, "m1", &models.MemoDelete{})
	require.NoError(t, err)

	n, err := r.MarkFailedAttempt(ctx, op.ID, "timeout", 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = r.MarkFailedAttempt(ctx, op.ID, "timeout again", 9000)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := r.DequeueAll(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetriedCount)
	assert.Equal(t, int64(9000), pending[0].NextAttemptAt)
	assert.Equal(t, "timeout again", pending[0].LastError)

	require.NoError(t, r.MarkDead(ctx, op.ID, "gave up"))
	all, err := r.DequeueAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	failed, err := r.ListFailed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "gave up", failed[0].LastError)

	require.NoError(t, r.Requeue(ctx, op.ID))
	assert.ErrorIs(t, r.Requeue(ctx, op.ID), common.ErrNotFound, "only failed operations can be requeued")

	all, err = r.DequeueAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Zero(t, all[0].RetriedCount)
	assert.Zero(t, all[0].NextAttemptAt)

	_, err = r.MarkFailedAttempt(ctx, "missing", "x", 0)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUndecodablePayload_IsFailedAndDoesNotBlock(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db).WithClock(fixedClock(200))
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO offline_operations
		(id, operation_type, entity_type, entity_id, payload_json, created_at)
		VALUES ('bad', 'create', 'memo', 'm0', '{broken', 100)`)
	require.NoError(t, err)

	good, err := r.Enqueue(ctx, "m1", &models.MemoDelete{})
	require.NoError(t, err)

	got, err := r.DequeueAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{good.ID}, ids(got))

	failed, err := r.ListFailed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].ID)
	assert.Nil(t, failed[0].Payload)
	assert.Contains(t, failed[0].LastError, common.ErrSerialization.Error())
}

func TestRemapEntity(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Enqueue(ctx, "tmp", &models.MemoUpdate{})
	require.NoError(t, err)
	_, err = r.Enqueue(ctx, "tmp", &models.MemoDelete{})
	require.NoError(t, err)
	_, err = r.Enqueue(ctx, "tmp", &models.DiaryDelete{})
	require.NoError(t, err)

	n, err := r.RemapEntity(ctx, models.EntityMemo, "tmp", "canon")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := r.DequeueAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "canon", all[0].EntityID)
	assert.Equal(t, "canon", all[1].EntityID)
	assert.Equal(t, "tmp", all[2].EntityID)
}

func TestHasPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	op, err := r.Enqueue(ctx, "m1", &models.MemoDelete{})
	require.NoError(t, err)
	_, err = r.Enqueue(ctx, "2024-05-01", &models.DiaryDelete{})
	require.NoError(t, err)

	for _, tc := range []struct {
		entity models.EntityType
		id     string
		want   bool
	}{
		{models.EntityMemo, "m1", true},
		{models.EntityMemo, "m2", false},
		{models.EntityDiary, "m1", false},
		{models.EntityDiary, "2024-05-01", true},
	} {
		got, err := r.HasPending(ctx, tc.entity, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s", tc.entity, tc.id)
	}

	// dead-lettered operations no longer hold the entity
	require.NoError(t, r.MarkDead(ctx, op.ID, "rejected"))
	got, err := r.HasPending(ctx, models.EntityMemo, "m1")
	require.NoError(t, err)
	assert.False(t, got)
}
