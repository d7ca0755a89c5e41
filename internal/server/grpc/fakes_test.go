package grpc

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
	"github.com/dmitrijs2005/memodiary/internal/server/services"
)

// fakeMemos is an in-memory memoService keyed by user and id.
type fakeMemos struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Memo
	err  error
}

func newFakeMemos() *fakeMemos { return &fakeMemos{rows: map[string]models.Memo{}} }

func (f *fakeMemos) Create(_ context.Context, userID string, in services.MemoInput) (*models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if in.Content == "" {
		return nil, fmt.Errorf("memo content is empty: %w", common.ErrInvalidInput)
	}
	f.seq++
	m := models.Memo{
		ID: "m" + strconv.Itoa(f.seq), UserID: userID, Content: in.Content, Tags: in.Tags,
		DiaryDate: in.DiaryDate, CreatedAt: int64(f.seq), UpdatedAt: int64(f.seq),
	}
	f.rows[m.ID] = m
	return &m, nil
}

func (f *fakeMemos) Get(_ context.Context, userID, id string) (*models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.rows[id]
	if !ok || m.UserID != userID {
		return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	return &m, nil
}

func (f *fakeMemos) List(_ context.Context, userID string, filter models.MemoFilter, limit, offset int) ([]models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Memo
	for _, m := range f.rows {
		if m.UserID == userID && (filter == models.FilterAll || m.Archived == (filter == models.FilterArchived)) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

func (f *fakeMemos) Search(_ context.Context, userID, query string, limit int) ([]models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Memo
	for _, m := range f.rows {
		if m.UserID == userID && strings.Contains(strings.ToLower(m.Content), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemos) Update(_ context.Context, userID, id string, p models.MemoPatch) (*models.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok || m.UserID != userID {
		return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	f.seq++
	m = p.Apply(m)
	m.UpdatedAt = int64(f.seq)
	f.rows[id] = m
	return &m, nil
}

func (f *fakeMemos) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok || m.UserID != userID {
		return fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

type fakeDiaries struct {
	mu   sync.Mutex
	rows map[string]models.Diary
}

func newFakeDiaries() *fakeDiaries { return &fakeDiaries{rows: map[string]models.Diary{}} }

func diaryKey(userID, date string) string { return userID + "/" + date }

func (f *fakeDiaries) Create(_ context.Context, userID, date string, in services.DiaryInput) (*models.Diary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := diaryKey(userID, date)
	if _, ok := f.rows[k]; ok {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrAlreadyExists)
	}
	d := models.Diary{UserID: userID, Date: date, Summary: in.Summary, MoodKey: in.MoodKey,
		MoodScore: in.MoodScore, CoverImageID: in.CoverImageID, CreatedAt: 1, UpdatedAt: 1}
	f.rows[k] = d
	return &d, nil
}

func (f *fakeDiaries) Update(_ context.Context, userID, date string, in services.DiaryInput) (*models.Diary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := diaryKey(userID, date)
	d, ok := f.rows[k]
	if !ok {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	d.Summary, d.MoodKey, d.MoodScore, d.CoverImageID = in.Summary, in.MoodKey, in.MoodScore, in.CoverImageID
	d.UpdatedAt++
	f.rows[k] = d
	return &d, nil
}

func (f *fakeDiaries) Get(_ context.Context, userID, date string) (*models.Diary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[diaryKey(userID, date)]
	if !ok {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	return &d, nil
}

func (f *fakeDiaries) List(_ context.Context, userID string, limit, offset int) ([]models.Diary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Diary
	for _, d := range f.rows {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeDiaries) Delete(_ context.Context, userID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := diaryKey(userID, date)
	if _, ok := f.rows[k]; !ok {
		return fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	delete(f.rows, k)
	return nil
}
