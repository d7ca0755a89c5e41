// Package memos is the memo half of the client cache store.
//
// Rows are keyed by memo id and carry a tombstone flag (is_deleted) and a
// synced_at watermark next to the canonical fields. Listings are newest
// updated first and never include tombstones; Get returns tombstoned rows
// so callers can tell "deleted locally" from "never seen".
//
// Two write paths exist:
//
//   - Upsert overwrites unconditionally and is used for local writes and
//     for mirroring the result of a confirmed remote call.
//   - Merge applies the last-writer-wins rule used by reconciliation
//     pulls: a remote record replaces the local row only when the local
//     updated_at is strictly older.
//
// The repository works over dbx.DBTX, so it can be bound to *sql.DB or to
// a *sql.Tx. Storage failures are wrapped in common.ErrStorage.
package memos
