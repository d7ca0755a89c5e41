package cli

import (
	"context"
	"fmt"
)

// Sync runs a sync cycle now.
func (a *App) Sync(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage("sync")
	}
	if err := a.sync.SyncAll(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	fmt.Fprintln(a.out, "sync finished")
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	st, err := a.sync.Status(ctx)
	if err != nil {
		return err
	}
	mode := "offline"
	if st.Online {
		mode = "online"
	}
	fmt.Fprintf(a.out, "mode:      %s\n", mode)
	fmt.Fprintf(a.out, "syncing:   %t\n", st.Syncing)
	fmt.Fprintf(a.out, "auto-sync: %t\n", st.AutoSync)
	fmt.Fprintf(a.out, "pending:   %d\n", st.Pending)
	fmt.Fprintf(a.out, "failed:    %d\n", st.Failed)
	fmt.Fprintf(a.out, "last sync: %s\n", formatTime(st.LastSyncAt))
	if st.LastSyncError != "" {
		fmt.Fprintf(a.out, "last error: %s\n", st.LastSyncError)
	}
	return nil
}

// Failed lists operations that will not be retried automatically.
func (a *App) Failed(ctx context.Context, args []string) error {
	ops, err := a.sync.FailedOperations(ctx)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		fmt.Fprintln(a.out, "no failed operations")
		return nil
	}
	for _, op := range ops {
		fmt.Fprintf(a.out, "%s  %s %s %s  attempts=%d  %s\n",
			op.ID, op.OperationType(), op.EntityType(), op.EntityID, op.RetriedCount, op.LastError)
	}
	return nil
}

func (a *App) Retry(ctx context.Context, args []string) error {
	id, err := oneArg(args, "retry <op-id>")
	if err != nil {
		return err
	}
	if err := a.sync.Retry(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "operation %s queued again\n", id)
	return nil
}
