package models

import (
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/common"
)

// Diary is the canonical diary record for one calendar day.
type Diary struct {
	Date         string `json:"date"`
	Summary      string `json:"summary"`
	MoodKey      string `json:"mood_key"`
	MoodScore    int    `json:"mood_score"`
	CoverImageID string `json:"cover_image_id,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// CachedDiary is a diary as kept in the local cache.
type CachedDiary struct {
	Diary
	Deleted  bool  `json:"deleted"`
	SyncedAt int64 `json:"synced_at"`
}

func MirrorDiary(d Diary) CachedDiary {
	return CachedDiary{Diary: d, SyncedAt: d.UpdatedAt}
}

func (c CachedDiary) Reconciled() bool {
	return c.SyncedAt == c.UpdatedAt
}

// DiaryDraft holds the editable diary fields.
type DiaryDraft struct {
	Summary      string `json:"summary"`
	MoodKey      string `json:"mood_key"`
	MoodScore    int    `json:"mood_score"`
	CoverImageID string `json:"cover_image_id,omitempty"`
}

func (d DiaryDraft) Validate() error {
	if d.MoodScore < 0 {
		return fmt.Errorf("mood score %d is negative: %w", d.MoodScore, common.ErrInvalidInput)
	}
	return nil
}

// Apply copies the draft onto d. Timestamps are left to the caller.
func (d DiaryDraft) Apply(diary Diary) Diary {
	diary.Summary = d.Summary
	diary.MoodKey = d.MoodKey
	diary.MoodScore = d.MoodScore
	diary.CoverImageID = d.CoverImageID
	return diary
}
