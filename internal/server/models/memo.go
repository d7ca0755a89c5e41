// Package models defines the records stored by the server.
package models

// Memo is a memo owned by UserID. Timestamps are epoch milliseconds.
type Memo struct {
	ID        string
	UserID    string
	Content   string
	Tags      []string
	Archived  bool
	DiaryDate string
	CreatedAt int64
	UpdatedAt int64
}

// MemoFilter selects memos by archived state.
type MemoFilter string

const (
	FilterUnarchived MemoFilter = "unarchived"
	FilterArchived   MemoFilter = "archived"
	FilterAll        MemoFilter = "all"
)

// MemoPatch is a partial update; nil fields are left unchanged.
type MemoPatch struct {
	Content   *string
	Tags      *[]string
	Archived  *bool
	DiaryDate *string
}

// Apply returns m with the non-nil fields of p applied.
func (p MemoPatch) Apply(m Memo) Memo {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Tags != nil {
		m.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Archived != nil {
		m.Archived = *p.Archived
	}
	if p.DiaryDate != nil {
		m.DiaryDate = *p.DiaryDate
	}
	return m
}
