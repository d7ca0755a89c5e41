package diaries

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

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
	return db
}

func diary(date string, updatedAt int64) *models.CachedDiary {
	return &models.CachedDiary{
		Diary: models.Diary{
			Date:      date,
			Summary:   "summary " + date,
			MoodKey:   "calm",
			MoodScore: 6,
			CreatedAt: 10,
			UpdatedAt: updatedAt,
		},
		SyncedAt: updatedAt,
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := diary("2024-05-01", 100)
	d.CoverImageID = "img-1"
	require.NoError(t, r.Upsert(ctx, d))
	require.NoError(t, r.Upsert(ctx, d))

	got, err := r.Get(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, *d, *got)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = r.Get(ctx, "2024-05-02")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMerge_LastWriterWins(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	local := diary("2024-05-01", 200)
	local.Summary = "local"
	require.NoError(t, r.Upsert(ctx, local))

	applied, err := r.Merge(ctx, models.Diary{Date: "2024-05-01", Summary: "stale", UpdatedAt: 100})
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = r.Merge(ctx, models.Diary{Date: "2024-05-01", Summary: "fresh", CreatedAt: 10, UpdatedAt: 300})
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := r.Get(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Summary)
	assert.True(t, got.Reconciled())
}

func TestList_SkipsTombstonesNewestDateFirst(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for _, date := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		require.NoError(t, r.Upsert(ctx, diary(date, 100)))
	}
	require.NoError(t, r.MarkDeleted(ctx, "2024-02-01", 150))

	got, err := r.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.Equal(t, "2024-01-01", got[1].Date)

	got, err = r.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-01", got[0].Date)

	_, err = r.GetLive(ctx, "2024-02-01")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Delete(ctx, "2024-02-01"))
	_, err = r.Get(ctx, "2024-02-01")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
