// Package services contains the offline-first core of the memodiary
// client.
//
// SyncManager owns the online flag, replays the offline operation queue
// against the remote service, pulls the remote listing back into the
// cache under the last-writer-wins rule and runs the recurring auto-sync
// loop. WatchConnection probes the remote and flips the online flag.
//
// MemoService and DiaryService are the read/write helpers used by the
// command layer. While online they call the remote and mirror the result
// into the cache; while offline they write to the cache and enqueue a
// typed operation for later replay.
package services
