package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/storage"
	"github.com/dmitrijs2005/memodiary/internal/logging"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store   *storage.Store
	remote  *fakeRemote
	clock   *testClock
	sync    *SyncManager
	memos   *MemoService
	diaries *DiaryService
}

func newHarness(t *testing.T, opts SyncOptions) *harness {
	t.Helper()
	clock := &testClock{now: time.UnixMilli(1_000)}
	opts.Now = clock.Now

	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"), clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	if opts.RemoteTimeout == 0 {
		opts.RemoteTimeout = 5 * time.Second
	}

	remote := newFakeRemote()
	m := NewSyncManager(store, remote, logging.NewNopLogger(), opts)
	t.Cleanup(m.StopAutoSync)
	return &harness{
		store:   store,
		remote:  remote,
		clock:   clock,
		sync:    m,
		memos:   NewMemoService(store, remote, m),
		diaries: NewDiaryService(store, remote, m),
	}
}

func (h *harness) offline(t *testing.T) {
	t.Helper()
	h.sync.SetOnline(context.Background(), false)
}

func (h *harness) online(t *testing.T) {
	t.Helper()
	h.sync.SetOnline(context.Background(), true)
}
