package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/memodiary/internal/client/client"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
)

// fakeRemote is an in-memory memo/diary service. Canonical ids are
// "srv-N" and updated_at comes from a counter that starts far ahead of
// the test clocks, so remote writes always win unless a test says
// otherwise.
type fakeRemote struct {
	mu      sync.Mutex
	seq     int
	clock   int64
	memos   map[string]models.Memo
	diaries map[string]models.Diary
	fail    map[string]error
	calls   map[string]int
	// hook runs before every call, outside the lock.
	hook func(ctx context.Context, method string)
}

var _ client.Client = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		clock:   1_000_000,
		memos:   map[string]models.Memo{},
		diaries: map[string]models.Diary{},
		fail:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (f *fakeRemote) failWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, method)
		return
	}
	f.fail[method] = err
}

func (f *fakeRemote) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRemote) setHook(h func(ctx context.Context, method string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = h
}

// enter records the call and returns the injected error, if any. The
// caller must hold no lock; on success enter returns with f.mu held.
func (f *fakeRemote) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	hook := f.hook
	f.calls[method]++
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, method)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", method, client.ErrUnavailable)
	}

	f.mu.Lock()
	if err := f.fail[method]; err != nil {
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRemote) tick() int64 {
	f.clock++
	return f.clock
}

func (f *fakeRemote) Close() error { return nil }

func (f *fakeRemote) CreateMemo(ctx context.Context, d models.MemoDraft) (*models.Memo, error) {
	if err := f.enter(ctx, "CreateMemo"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	f.seq++
	now := f.tick()
	m := models.Memo{
		ID:        fmt.Sprintf("srv-%d", f.seq),
		Content:   d.Content,
		Tags:      d.Tags,
		DiaryDate: d.DiaryDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.memos[m.ID] = m
	return &m, nil
}

func (f *fakeRemote) GetMemo(ctx context.Context, id string) (*models.Memo, error) {
	if err := f.enter(ctx, "GetMemo"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	m, ok := f.memos[id]
	if !ok {
		return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	return &m, nil
}

func (f *fakeRemote) ListMemos(ctx context.Context, q models.MemoQuery) ([]models.Memo, error) {
	if err := f.enter(ctx, "ListMemos"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Memo
	for _, m := range f.memos {
		switch {
		case q.Filter == models.FilterArchived && !m.Archived,
			q.Filter == models.FilterUnarchived && m.Archived:
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeRemote) UpdateMemo(ctx context.Context, id string, p models.MemoPatch) (*models.Memo, error) {
	if err := f.enter(ctx, "UpdateMemo"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	m, ok := f.memos[id]
	if !ok {
		return nil, fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	m = p.Apply(m)
	m.UpdatedAt = f.tick()
	f.memos[id] = m
	return &m, nil
}

func (f *fakeRemote) DeleteMemo(ctx context.Context, id string) error {
	if err := f.enter(ctx, "DeleteMemo"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	if _, ok := f.memos[id]; !ok {
		return fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	delete(f.memos, id)
	return nil
}

func (f *fakeRemote) SearchMemos(ctx context.Context, query string, limit int) ([]models.Memo, error) {
	if err := f.enter(ctx, "SearchMemos"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Memo
	for _, m := range f.memos {
		if strings.Contains(m.Content, query) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRemote) CreateDiary(ctx context.Context, date string, d models.DiaryDraft) (*models.Diary, error) {
	if err := f.enter(ctx, "CreateDiary"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	if _, ok := f.diaries[date]; ok {
		return nil, fmt.Errorf("diary %s: %w", date, client.ErrConflict)
	}
	now := f.tick()
	diary := d.Apply(models.Diary{Date: date, CreatedAt: now, UpdatedAt: now})
	f.diaries[date] = diary
	return &diary, nil
}

func (f *fakeRemote) UpdateDiary(ctx context.Context, date string, d models.DiaryDraft) (*models.Diary, error) {
	if err := f.enter(ctx, "UpdateDiary"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	diary, ok := f.diaries[date]
	if !ok {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	diary = d.Apply(diary)
	diary.UpdatedAt = f.tick()
	f.diaries[date] = diary
	return &diary, nil
}

func (f *fakeRemote) GetDiary(ctx context.Context, date string) (*models.Diary, error) {
	if err := f.enter(ctx, "GetDiary"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	diary, ok := f.diaries[date]
	if !ok {
		return nil, fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	return &diary, nil
}

func (f *fakeRemote) ListDiaries(ctx context.Context, limit, offset int) ([]models.Diary, error) {
	if err := f.enter(ctx, "ListDiaries"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Diary
	for _, d := range f.diaries {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRemote) DeleteDiary(ctx context.Context, date string) error {
	if err := f.enter(ctx, "DeleteDiary"); err != nil {
		return err
	}
	defer f.mu.Unlock()
	if _, ok := f.diaries[date]; !ok {
		return fmt.Errorf("diary %s: %w", date, common.ErrNotFound)
	}
	delete(f.diaries, date)
	return nil
}

// memoContents returns the remote memo contents, sorted.
func (f *fakeRemote) memoContents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.memos))
	for _, m := range f.memos {
		out = append(out, m.Content)
	}
	sort.Strings(out)
	return out
}

func (f *fakeRemote) memo(id string) (models.Memo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memos[id]
	return m, ok
}

func (f *fakeRemote) diary(date string) (models.Diary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.diaries[date]
	return d, ok
}

// put stores a memo as if written by another device.
func (f *fakeRemote) put(m models.Memo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memos[m.ID] = m
}
