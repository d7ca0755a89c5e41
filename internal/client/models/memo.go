package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/common"
)

// DiaryDateLayout is the YYYY-MM-DD layout used for diary keys.
const DiaryDateLayout = time.DateOnly

// Memo is the canonical memo record. Timestamps are epoch milliseconds.
type Memo struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Archived  bool     `json:"archived"`
	DiaryDate string   `json:"diary_date,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// CachedMemo is a memo as kept in the local cache.
//
// SyncedAt never exceeds UpdatedAt; equality means the row matches the
// last version seen from the remote. Deleted marks a tombstone waiting
// for a queued remote delete.
type CachedMemo struct {
	Memo
	Deleted  bool  `json:"deleted"`
	SyncedAt int64 `json:"synced_at"`
}

// MirrorMemo wraps a canonical memo as a fully reconciled cache row.
func MirrorMemo(m Memo) CachedMemo {
	return CachedMemo{Memo: m, SyncedAt: m.UpdatedAt}
}

// Reconciled reports whether the row carries no local changes.
func (c CachedMemo) Reconciled() bool {
	return c.SyncedAt == c.UpdatedAt
}

// MemoDraft is the content of a memo being created.
type MemoDraft struct {
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	DiaryDate string   `json:"diary_date,omitempty"`
}

func (d MemoDraft) Validate() error {
	if d.Content == "" {
		return fmt.Errorf("memo content is empty: %w", common.ErrInvalidInput)
	}
	if d.DiaryDate != "" {
		return ValidateDiaryDate(d.DiaryDate)
	}
	return nil
}

// MemoPatch is a partial memo update. Nil fields are left unchanged.
type MemoPatch struct {
	Content   *string   `json:"content,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Archived  *bool     `json:"archived,omitempty"`
	DiaryDate *string   `json:"diary_date,omitempty"`
}

func (p MemoPatch) Validate() error {
	if p.Content != nil && *p.Content == "" {
		return fmt.Errorf("memo content is empty: %w", common.ErrInvalidInput)
	}
	if p.DiaryDate != nil && *p.DiaryDate != "" {
		return ValidateDiaryDate(*p.DiaryDate)
	}
	return nil
}

// Apply returns m with the patch applied. UpdatedAt is left to the caller.
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

// MemoFilter selects memos by archive state.
type MemoFilter string

const (
	FilterUnarchived MemoFilter = "unarchived"
	FilterArchived   MemoFilter = "archived"
	FilterAll        MemoFilter = "all"
)

// ParseMemoFilter maps user input to a filter; empty input means unarchived.
func ParseMemoFilter(s string) (MemoFilter, error) {
	switch MemoFilter(s) {
	case "", FilterUnarchived:
		return FilterUnarchived, nil
	case FilterArchived:
		return FilterArchived, nil
	case FilterAll:
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown memo filter %q: %w", s, common.ErrInvalidInput)
}

// MemoQuery pages through memos. A non-positive Limit means no limit.
type MemoQuery struct {
	Limit  int
	Offset int
	Filter MemoFilter
}

// ValidateDiaryDate checks the YYYY-MM-DD form.
func ValidateDiaryDate(date string) error {
	if _, err := time.Parse(DiaryDateLayout, date); err != nil {
		return fmt.Errorf("diary date %q: %w", date, common.ErrInvalidInput)
	}
	return nil
}
