package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/dbx"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/diaries"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/memos"
	"github.com/dmitrijs2005/memodiary/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeMemosRepo struct {
	memos.Repository
	mu        sync.Mutex
	rows      map[string]models.Memo
	updateErr error
	lastLimit int
}

func (f *fakeMemosRepo) Create(_ context.Context, m *models.Memo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[m.ID] = *m
	return nil
}

func (f *fakeMemosRepo) Get(_ context.Context, userID, id string) (*models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok || m.UserID != userID {
		return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	return &m, nil
}

func (f *fakeMemosRepo) GetForUpdate(ctx context.Context, userID, id string) (*models.Memo, error) {
	return f.Get(ctx, userID, id)
}

func (f *fakeMemosRepo) List(_ context.Context, userID string, filter models.MemoFilter, limit, offset int) ([]models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var out []models.Memo
	for _, m := range f.rows {
		if m.UserID != userID {
			continue
		}
		if filter != models.FilterAll && m.Archived != (filter == models.FilterArchived) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMemosRepo) Search(_ context.Context, userID, query string, limit int) ([]models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var out []models.Memo
	for _, m := range f.rows {
		if m.UserID == userID && strings.Contains(strings.ToLower(m.Content), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemosRepo) Update(_ context.Context, m *models.Memo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.rows[m.ID] = *m
	return nil
}

func (f *fakeMemosRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok || m.UserID != userID {
		return fmt.Errorf("delete memo %s: %w", id, common.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

type diaryKey struct{ user, date string }

type fakeDiariesRepo struct {
	diaries.Repository
	mu   sync.Mutex
	rows map[diaryKey]models.Diary
}

func (f *fakeDiariesRepo) Create(_ context.Context, d *models.Diary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := diaryKey{d.UserID, d.Date}
	if _, ok := f.rows[k]; ok {
		return fmt.Errorf("diary %s: %w", d.Date, common.ErrAlreadyExists)
	}
	f.rows[k] = *d
	return nil
}

func (f *fakeDiariesRepo) Get(_ context.Context, userID, date string) (*models.Diary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[diaryKey{userID, date}]
	if !ok {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	return &d, nil
}

func (f *fakeDiariesRepo) GetForUpdate(ctx context.Context, userID, date string) (*models.Diary, error) {
	return f.Get(ctx, userID, date)
}

func (f *fakeDiariesRepo) List(_ context.Context, userID string, limit, offset int) ([]models.Diary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Diary
	for k, d := range f.rows {
		if k.user == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDiariesRepo) Update(_ context.Context, d *models.Diary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := diaryKey{d.UserID, d.Date}
	if _, ok := f.rows[k]; !ok {
		return fmt.Errorf("update diary %s: %w", d.Date, common.ErrNotFound)
	}
	f.rows[k] = *d
	return nil
}

func (f *fakeDiariesRepo) Delete(_ context.Context, userID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := diaryKey{userID, date}
	if _, ok := f.rows[k]; !ok {
		return fmt.Errorf("delete diary %s: %w", date, common.ErrNotFound)
	}
	delete(f.rows, k)
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	m *fakeMemosRepo
	d *fakeDiariesRepo
}

func (rm *fakeRepoManager) Memos(dbx.DBTX) memos.Repository     { return rm.m }
func (rm *fakeRepoManager) Diaries(dbx.DBTX) diaries.Repository { return rm.d }

// -------- helpers --------

type fixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	rm      *fakeRepoManager
	memos   *MemoService
	diaries *DiaryService
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:   db,
		mock: mock,
		rm: &fakeRepoManager{
			m: &fakeMemosRepo{rows: map[string]models.Memo{}},
			d: &fakeDiariesRepo{rows: map[diaryKey]models.Diary{}},
		},
		clock: time.UnixMilli(1_000),
	}
	now := func() time.Time { return f.clock }

	f.memos = NewMemoService(db, f.rm)
	f.memos.now = now
	f.diaries = NewDiaryService(db, f.rm)
	f.diaries.now = now
	return f
}

func (f *fixture) expectTx(commit bool) {
	f.mock.ExpectBegin()
	if commit {
		f.mock.ExpectCommit()
	} else {
		f.mock.ExpectRollback()
	}
}
