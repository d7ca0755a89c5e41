package models

// Diary is the diary of one calendar date (YYYY-MM-DD) for UserID.
type Diary struct {
	UserID       string
	Date         string
	Summary      string
	MoodKey      string
	MoodScore    int
	CoverImageID string
	CreatedAt    int64
	UpdatedAt    int64
}
