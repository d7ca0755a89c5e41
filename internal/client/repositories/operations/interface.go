// Package operations implements the offline operation queue: a FIFO log
// of mutations recorded while offline, replayed by the sync manager and
// removed only after the remote confirmed them.
//
// Operations are never merged or reordered. Each carries a retry counter
// and a next_attempt_at gate used for backoff; operations that can no
// longer succeed (undecodable payload, permanent remote rejection, retry
// cap reached) are moved to status failed and kept for inspection.
package operations

import (
	"context"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
)

type Repository interface {
	// Enqueue appends an operation for entityID, assigning its id,
	// created_at and a zero retry counter.
	Enqueue(ctx context.Context, entityID string, p models.Payload) (*models.OfflineOperation, error)

	// DequeueAll returns every pending operation, oldest first. It does
	// not remove anything.
	DequeueAll(ctx context.Context) ([]models.OfflineOperation, error)

	Get(ctx context.Context, id string) (*models.OfflineOperation, error)

	// Remove deletes a consumed operation. Removing an unknown id returns
	// common.ErrNotFound.
	Remove(ctx context.Context, id string) error

	// MarkFailedAttempt records a failed replay and returns the new retry
	// count.
	MarkFailedAttempt(ctx context.Context, id, lastErr string, nextAttemptAt int64) (int, error)

	// MarkDead moves an operation to status failed.
	MarkDead(ctx context.Context, id, lastErr string) error

	ListFailed(ctx context.Context) ([]models.OfflineOperation, error)

	// Requeue resets a failed operation to pending with a fresh counter.
	Requeue(ctx context.Context, id string) error

	// RemapEntity points queued operations at canonicalID instead of
	// tempID and returns how many were changed.
	RemapEntity(ctx context.Context, entity models.EntityType, tempID, canonicalID string) (int64, error)

	Count(ctx context.Context, status models.OperationStatus) (int, error)

	// HasPending reports whether a pending operation is queued for the
	// entity. Later writes to such an entity must queue behind it.
	HasPending(ctx context.Context, entity models.EntityType, entityID string) (bool, error)
}
