package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/client"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/memodiary/internal/client/storage"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/logging"
	"github.com/dmitrijs2005/memodiary/internal/timex"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrAutoSyncRunning is returned when a second auto-sync loop is requested.
var ErrAutoSyncRunning = errors.New("auto-sync already running")

// SyncOptions tunes the sync manager. Zero fields take the defaults of
// DefaultSyncOptions.
type SyncOptions struct {
	// PageSize bounds each reconciliation pull.
	PageSize int
	// RemoteTimeout applies to every single remote call.
	RemoteTimeout time.Duration
	// MaxRetries is the number of failed attempts after which a queued
	// operation is moved to failed.
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Now            func() time.Time
}

func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		PageSize:       100,
		RemoteTimeout:  10 * time.Second,
		MaxRetries:     10,
		BackoffInitial: time.Second,
		BackoffMax:     5 * time.Minute,
		Now:            time.Now,
	}
}

func (o SyncOptions) withDefaults() SyncOptions {
	d := DefaultSyncOptions()
	if o.PageSize <= 0 {
		o.PageSize = d.PageSize
	}
	if o.RemoteTimeout <= 0 {
		o.RemoteTimeout = d.RemoteTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = d.BackoffInitial
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = d.BackoffMax
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

type autoSyncLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// SyncManager reconciles the local cache with the remote service.
//
// The online and syncing flags are read without locks; a caller that
// checks IsOnline and then calls the remote may race with a flag flip.
// SyncAll is single-flight: concurrent callers share one execution.
type SyncManager struct {
	store  *storage.Store
	remote client.Client
	log    logging.Logger
	opts   SyncOptions

	online  atomic.Bool
	syncing atomic.Bool
	flight  singleflight.Group

	mu   sync.Mutex
	loop *autoSyncLoop
}

func NewSyncManager(store *storage.Store, remote client.Client, log logging.Logger, opts SyncOptions) *SyncManager {
	return &SyncManager{
		store:  store,
		remote: remote,
		log:    log.With("module", "sync"),
		opts:   opts.withDefaults(),
	}
}

func (m *SyncManager) IsOnline() bool  { return m.online.Load() }
func (m *SyncManager) IsSyncing() bool { return m.syncing.Load() }

// SetOnline updates the online flag and logs transitions once. It
// reports whether the flag changed.
func (m *SyncManager) SetOnline(ctx context.Context, online bool) bool {
	if m.online.Swap(online) == online {
		return false
	}
	if online {
		m.log.Info(ctx, "switched to online mode")
	} else {
		m.log.Warn(ctx, "switched to offline mode")
	}
	return true
}

// markUnreachable flips to offline when err says the remote cannot be
// reached.
func (m *SyncManager) markUnreachable(ctx context.Context, err error) {
	if client.IsTransient(err) && ctx.Err() == nil {
		m.SetOnline(ctx, false)
	}
}

// writeThrough reports whether a write to the entity may go straight to
// the remote. While operations for the entity are still queued the write
// is queued too, so it replays after them.
func (m *SyncManager) writeThrough(ctx context.Context, entity models.EntityType, id string) (bool, error) {
	if !m.IsOnline() {
		return false, nil
	}
	pending, err := m.store.Operations.HasPending(ctx, entity, id)
	if err != nil {
		return false, err
	}
	return !pending, nil
}

func (m *SyncManager) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.opts.RemoteTimeout)
}

func (m *SyncManager) nowMillis() int64 {
	return timex.Millis(m.opts.Now())
}

// CheckConnection issues a minimal listing call and sets the online flag
// from its outcome.
func (m *SyncManager) CheckConnection(ctx context.Context) bool {
	rctx, cancel := m.remoteContext(ctx)
	defer cancel()

	_, err := m.remote.ListMemos(rctx, models.MemoQuery{Limit: 1, Filter: models.FilterAll})
	online := err == nil
	if err != nil {
		m.log.Debug(ctx, "connection check failed", "error", err)
	}
	m.SetOnline(ctx, online)
	return online
}

// SyncAll marks the client online, replays ready queued operations and
// then pulls the remote state into the cache. Concurrent calls share a
// single run. The first hard error is returned; per-operation failures
// are recorded on the operation instead.
func (m *SyncManager) SyncAll(ctx context.Context) error {
	m.SetOnline(ctx, true)
	_, err, shared := m.flight.Do("sync", func() (any, error) {
		m.syncing.Store(true)
		defer m.syncing.Store(false)
		return nil, m.runCycle(ctx)
	})
	if shared {
		m.log.Debug(ctx, "joined running sync")
	}
	return err
}

func (m *SyncManager) runCycle(ctx context.Context) error {
	started := m.opts.Now()
	replayed, err := m.replay(ctx)
	if err == nil {
		err = m.pull(ctx)
	}
	m.recordOutcome(ctx, err)
	if err != nil {
		m.markUnreachable(ctx, err)
		return err
	}
	m.log.Info(ctx, "sync finished", "replayed", replayed, "took", m.opts.Now().Sub(started))
	return nil
}

// pull fetches one page of memos and diaries and merges them. The two
// entity types are reconciled independently.
func (m *SyncManager) pull(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return m.pullMemos(ctx) })
	g.Go(func() error { return m.pullDiaries(ctx) })
	return g.Wait()
}

func (m *SyncManager) pullMemos(ctx context.Context) error {
	rctx, cancel := m.remoteContext(ctx)
	remote, err := m.remote.ListMemos(rctx, models.MemoQuery{Limit: m.opts.PageSize, Filter: models.FilterAll})
	cancel()
	if err != nil {
		return fmt.Errorf("pull memos: %w", err)
	}
	merged := 0
	for _, memo := range remote {
		applied, err := m.store.Memos.Merge(ctx, memo)
		if err != nil {
			return fmt.Errorf("pull memos: %w", err)
		}
		if applied {
			merged++
		}
	}
	m.log.Debug(ctx, "memos pulled", "received", len(remote), "merged", merged)
	return nil
}

func (m *SyncManager) pullDiaries(ctx context.Context) error {
	rctx, cancel := m.remoteContext(ctx)
	remote, err := m.remote.ListDiaries(rctx, m.opts.PageSize, 0)
	cancel()
	if err != nil {
		return fmt.Errorf("pull diaries: %w", err)
	}
	merged := 0
	for _, diary := range remote {
		applied, err := m.store.Diaries.Merge(ctx, diary)
		if err != nil {
			return fmt.Errorf("pull diaries: %w", err)
		}
		if applied {
			merged++
		}
	}
	m.log.Debug(ctx, "diaries pulled", "received", len(remote), "merged", merged)
	return nil
}

func (m *SyncManager) recordOutcome(ctx context.Context, syncErr error) {
	var err error
	if syncErr == nil {
		err = errors.Join(
			m.store.Metadata.Set(ctx, metadata.KeyLastSyncAt, []byte(strconv.FormatInt(m.nowMillis(), 10))),
			m.store.Metadata.Delete(ctx, metadata.KeyLastSyncError),
		)
	} else {
		err = m.store.Metadata.Set(ctx, metadata.KeyLastSyncError, []byte(syncErr.Error()))
	}
	if err != nil {
		m.log.Error(ctx, "failed to record sync outcome", "error", err)
	}
}

// StartAutoSync runs SyncAll every interval while the client is online,
// until ctx is done or StopAutoSync is called. Only one loop may run.
func (m *SyncManager) StartAutoSync(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("auto-sync interval must be positive, got %s", interval)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loop != nil {
		return ErrAutoSyncRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	loop := &autoSyncLoop{cancel: cancel, done: make(chan struct{})}
	m.loop = loop
	go m.runAutoSync(ctx, interval, loop)
	return nil
}

func (m *SyncManager) runAutoSync(ctx context.Context, interval time.Duration, loop *autoSyncLoop) {
	defer func() {
		m.mu.Lock()
		if m.loop == loop {
			m.loop = nil
		}
		m.mu.Unlock()
		close(loop.done)
	}()

	m.log.Info(ctx, "auto-sync started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info(context.WithoutCancel(ctx), "auto-sync stopped")
			return
		case <-ticker.C:
			if !m.IsOnline() {
				continue
			}
			if err := m.SyncAll(ctx); err != nil && ctx.Err() == nil {
				m.log.Warn(ctx, "auto-sync failed", "error", err)
			}
		}
	}
}

// StopAutoSync cancels the auto-sync loop and waits for it to exit. It is
// a no-op when no loop is running.
func (m *SyncManager) StopAutoSync() {
	m.mu.Lock()
	loop := m.loop
	m.mu.Unlock()
	if loop == nil {
		return
	}
	loop.cancel()
	<-loop.done
}

func (m *SyncManager) AutoSyncRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loop != nil
}

// Status reports the flags and the queue and last-sync bookkeeping.
func (m *SyncManager) Status(ctx context.Context) (models.SyncStatus, error) {
	st := models.SyncStatus{
		Online:   m.IsOnline(),
		Syncing:  m.IsSyncing(),
		AutoSync: m.AutoSyncRunning(),
	}
	var err error
	if st.Pending, err = m.store.Operations.Count(ctx, models.StatusPending); err != nil {
		return st, err
	}
	if st.Failed, err = m.store.Operations.Count(ctx, models.StatusFailed); err != nil {
		return st, err
	}
	last, err := m.store.Metadata.Get(ctx, metadata.KeyLastSyncAt)
	if err != nil {
		return st, err
	}
	if len(last) > 0 {
		if st.LastSyncAt, err = strconv.ParseInt(string(last), 10, 64); err != nil {
			return st, fmt.Errorf("last sync time %q: %w", last, common.ErrSerialization)
		}
	}
	lastErr, err := m.store.Metadata.Get(ctx, metadata.KeyLastSyncError)
	if err != nil {
		return st, err
	}
	st.LastSyncError = string(lastErr)
	return st, nil
}

// FailedOperations lists dead-lettered operations.
func (m *SyncManager) FailedOperations(ctx context.Context) ([]models.OfflineOperation, error) {
	return m.store.Operations.ListFailed(ctx)
}

// Retry puts a failed operation back into the queue with a fresh retry
// counter.
func (m *SyncManager) Retry(ctx context.Context, opID string) error {
	if err := m.store.Operations.Requeue(ctx, opID); err != nil {
		return fmt.Errorf("retry operation %s: %w", opID, err)
	}
	m.log.Info(ctx, "operation requeued", "op", opID)
	return nil
}
