// Package metadata is a small key/value table for client bookkeeping
// such as the time and outcome of the last sync.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyLastSyncAt    = "last_sync_at"
	KeyLastSyncError = "last_sync_error"
)

type Repository interface {
	// Get returns (nil, nil) for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
