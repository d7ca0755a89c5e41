package services

import (
	"context"
	"time"
)

// WatchConnection probes the remote every interval until ctx is done.
// When the client comes back online it runs a sync right away so queued
// operations do not wait for the next auto-sync tick.
func (m *SyncManager) WatchConnection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wasOnline := m.IsOnline()
			if online := m.CheckConnection(ctx); online && !wasOnline {
				if err := m.SyncAll(ctx); err != nil && ctx.Err() == nil {
					m.log.Warn(ctx, "sync after reconnect failed", "error", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
