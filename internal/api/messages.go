package api

// Memo is the canonical memo as sent by the service. Timestamps are
// epoch milliseconds assigned by the service.
type Memo struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	Archived  bool     `json:"archived"`
	DiaryDate string   `json:"diary_date,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

type CreateMemoRequest struct {
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	DiaryDate string   `json:"diary_date,omitempty"`
}

type GetMemoRequest struct {
	ID string `json:"id"`
}

// Memo list filters.
const (
	FilterUnarchived = "unarchived"
	FilterArchived   = "archived"
	FilterAll        = "all"
)

type ListMemosRequest struct {
	Filter string `json:"filter,omitempty"`
	Limit  int32  `json:"limit,omitempty"`
	Offset int32  `json:"offset,omitempty"`
}

type ListMemosResponse struct {
	Memos []Memo `json:"memos"`
}

// UpdateMemoRequest carries a partial update; nil fields are unchanged.
type UpdateMemoRequest struct {
	ID        string    `json:"id"`
	Content   *string   `json:"content,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Archived  *bool     `json:"archived,omitempty"`
	DiaryDate *string   `json:"diary_date,omitempty"`
}

type DeleteMemoRequest struct {
	ID string `json:"id"`
}

type SearchMemosRequest struct {
	Query string `json:"query"`
	Limit int32  `json:"limit,omitempty"`
}

// Diary is the canonical diary for one date (YYYY-MM-DD).
type Diary struct {
	Date         string `json:"date"`
	Summary      string `json:"summary"`
	MoodKey      string `json:"mood_key"`
	MoodScore    int32  `json:"mood_score"`
	CoverImageID string `json:"cover_image_id,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// DiaryRequest is used for both creating and updating a diary.
type DiaryRequest struct {
	Date         string `json:"date"`
	Summary      string `json:"summary"`
	MoodKey      string `json:"mood_key"`
	MoodScore    int32  `json:"mood_score"`
	CoverImageID string `json:"cover_image_id,omitempty"`
}

type GetDiaryRequest struct {
	Date string `json:"date"`
}

type ListDiariesRequest struct {
	Limit  int32 `json:"limit,omitempty"`
	Offset int32 `json:"offset,omitempty"`
}

type ListDiariesResponse struct {
	Diaries []Diary `json:"diaries"`
}

type DeleteDiaryRequest struct {
	Date string `json:"date"`
}

type Empty struct{}
