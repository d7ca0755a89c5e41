package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/client"
	"github.com/dmitrijs2005/memodiary/internal/client/config"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/client/services"
	"github.com/dmitrijs2005/memodiary/internal/client/storage"
	"github.com/dmitrijs2005/memodiary/internal/filex"
	"github.com/dmitrijs2005/memodiary/internal/logging"
)

type memoService interface {
	Get(ctx context.Context, id string) (*models.CachedMemo, error)
	List(ctx context.Context, q models.MemoQuery) ([]models.CachedMemo, error)
	Search(ctx context.Context, query string, limit int) ([]models.CachedMemo, error)
	Create(ctx context.Context, d models.MemoDraft) (*models.CachedMemo, error)
	Update(ctx context.Context, id string, p models.MemoPatch) (*models.CachedMemo, error)
	Archive(ctx context.Context, id string, archived bool) (*models.CachedMemo, error)
	Delete(ctx context.Context, id string) error
}

type diaryService interface {
	Get(ctx context.Context, date string) (*models.CachedDiary, error)
	List(ctx context.Context, limit, offset int) ([]models.CachedDiary, error)
	Save(ctx context.Context, date string, d models.DiaryDraft) (*models.CachedDiary, error)
	Delete(ctx context.Context, date string) error
}

type syncService interface {
	IsOnline() bool
	IsSyncing() bool
	CheckConnection(ctx context.Context) bool
	WatchConnection(ctx context.Context, interval time.Duration)
	SyncAll(ctx context.Context) error
	StartAutoSync(ctx context.Context, interval time.Duration) error
	StopAutoSync()
	Status(ctx context.Context) (models.SyncStatus, error)
	FailedOperations(ctx context.Context) ([]models.OfflineOperation, error)
	Retry(ctx context.Context, opID string) error
}

type App struct {
	config  *config.Config
	log     logging.Logger
	memos   memoService
	diaries diaryService
	sync    syncService

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
	closers     []io.Closer
}

// NewApp opens the cache at cfg.CacheDSN and connects the remote client.
// The connection is lazy, so an unreachable server is not an error here.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(cfg.CacheDSN); err != nil {
		return nil, fmt.Errorf("prepare cache dir: %w", err)
	}
	now := time.Now
	store, err := storage.Open(ctx, cfg.CacheDSN, now)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	remote, err := client.NewGRPCClient(cfg.ServerEndpointAddr, cfg.AccessToken)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	manager := services.NewSyncManager(store, remote, log, services.SyncOptions{
		PageSize:       cfg.PageSize,
		RemoteTimeout:  cfg.RemoteTimeout,
		MaxRetries:     cfg.MaxRetries,
		BackoffInitial: cfg.BackoffInitial,
		BackoffMax:     cfg.BackoffMax,
		Now:            now,
	})

	return &App{
		config:      cfg,
		log:         log.With("module", "cli"),
		memos:       services.NewMemoService(store, remote, manager),
		diaries:     services.NewDiaryService(store, remote, manager),
		sync:        manager,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: stdinIsTerminal(),
		closers:     []io.Closer{remote, store},
	}, nil
}

// Run probes the server, starts the background loops and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.sync.CheckConnection(ctx) {
		if err := a.sync.SyncAll(ctx); err != nil {
			a.log.Warn(ctx, "initial sync failed", "error", err)
		}
	}

	go a.sync.WatchConnection(ctx, a.config.OnlineCheckInterval)

	if a.config.AutoSyncInterval > 0 {
		if err := a.sync.StartAutoSync(ctx, a.config.AutoSyncInterval); err != nil {
			a.log.Error(ctx, "auto-sync not started", "error", err)
		}
		defer a.sync.StopAutoSync()
	}

	fmt.Fprintln(a.out, "memodiary (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, a.reader)
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
