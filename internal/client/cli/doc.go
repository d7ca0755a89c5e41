// Package cli provides the interactive memodiary command-line client.
//
// It wires configuration, the local cache, the remote client and the sync
// engine, then runs a REPL until the user exits. A background prober keeps
// the online flag current and an auto-sync loop drains the offline queue.
//
// Commands:
//   - list [archived|all], show, add, edit, archive, unarchive, delete, search
//   - diary, diaries, write-diary, delete-diary
//   - sync, status, failed, retry
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
