package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/memodiary/internal/api"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
	"github.com/dmitrijs2005/memodiary/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Unexpected failures are
// logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, errNoUser), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func memoToAPI(m *models.Memo) *api.Memo {
	return &api.Memo{
		ID:        m.ID,
		Content:   m.Content,
		Tags:      m.Tags,
		Archived:  m.Archived,
		DiaryDate: m.DiaryDate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func memosToAPI(ms []models.Memo) *api.ListMemosResponse {
	out := &api.ListMemosResponse{Memos: make([]api.Memo, 0, len(ms))}
	for i := range ms {
		out.Memos = append(out.Memos, *memoToAPI(&ms[i]))
	}
	return out
}

func diaryToAPI(d *models.Diary) *api.Diary {
	return &api.Diary{
		Date:         d.Date,
		Summary:      d.Summary,
		MoodKey:      d.MoodKey,
		MoodScore:    int32(d.MoodScore),
		CoverImageID: d.CoverImageID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func diaryInput(req *api.DiaryRequest) services.DiaryInput {
	return services.DiaryInput{
		Summary:      req.Summary,
		MoodKey:      req.MoodKey,
		MoodScore:    int(req.MoodScore),
		CoverImageID: req.CoverImageID,
	}
}

func (s *GRPCServer) CreateMemo(ctx context.Context, req *api.CreateMemoRequest) (*api.Memo, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "create memo", err)
	}
	m, err := s.memos.Create(ctx, userID, services.MemoInput{Content: req.Content, Tags: req.Tags, DiaryDate: req.DiaryDate})
	if err != nil {
		return nil, s.toStatus(ctx, "create memo", err)
	}
	s.logger.Info(ctx, "memo created", "user_id", userID, "id", m.ID)
	return memoToAPI(m), nil
}

func (s *GRPCServer) GetMemo(ctx context.Context, req *api.GetMemoRequest) (*api.Memo, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "get memo", err)
	}
	m, err := s.memos.Get(ctx, userID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "get memo", err)
	}
	return memoToAPI(m), nil
}

func (s *GRPCServer) ListMemos(ctx context.Context, req *api.ListMemosRequest) (*api.ListMemosResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "list memos", err)
	}
	ms, err := s.memos.List(ctx, userID, models.MemoFilter(req.Filter), int(req.Limit), int(req.Offset))
	if err != nil {
		return nil, s.toStatus(ctx, "list memos", err)
	}
	return memosToAPI(ms), nil
}

func (s *GRPCServer) UpdateMemo(ctx context.Context, req *api.UpdateMemoRequest) (*api.Memo, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "update memo", err)
	}
	p := models.MemoPatch{Content: req.Content, Tags: req.Tags, Archived: req.Archived, DiaryDate: req.DiaryDate}
	m, err := s.memos.Update(ctx, userID, req.ID, p)
	if err != nil {
		return nil, s.toStatus(ctx, "update memo", err)
	}
	return memoToAPI(m), nil
}

func (s *GRPCServer) DeleteMemo(ctx context.Context, req *api.DeleteMemoRequest) (*api.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "delete memo", err)
	}
	if err := s.memos.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete memo", err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) SearchMemos(ctx context.Context, req *api.SearchMemosRequest) (*api.ListMemosResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "search memos", err)
	}
	ms, err := s.memos.Search(ctx, userID, req.Query, int(req.Limit))
	if err != nil {
		return nil, s.toStatus(ctx, "search memos", err)
	}
	return memosToAPI(ms), nil
}

func (s *GRPCServer) CreateDiary(ctx context.Context, req *api.DiaryRequest) (*api.Diary, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "create diary", err)
	}
	d, err := s.diaries.Create(ctx, userID, req.Date, diaryInput(req))
	if err != nil {
		return nil, s.toStatus(ctx, "create diary", err)
	}
	s.logger.Info(ctx, "diary created", "user_id", userID, "date", d.Date)
	return diaryToAPI(d), nil
}

func (s *GRPCServer) UpdateDiary(ctx context.Context, req *api.DiaryRequest) (*api.Diary, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "update diary", err)
	}
	d, err := s.diaries.Update(ctx, userID, req.Date, diaryInput(req))
	if err != nil {
		return nil, s.toStatus(ctx, "update diary", err)
	}
	return diaryToAPI(d), nil
}

func (s *GRPCServer) GetDiary(ctx context.Context, req *api.GetDiaryRequest) (*api.Diary, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "get diary", err)
	}
	d, err := s.diaries.Get(ctx, userID, req.Date)
	if err != nil {
		return nil, s.toStatus(ctx, "get diary", err)
	}
	return diaryToAPI(d), nil
}

func (s *GRPCServer) ListDiaries(ctx context.Context, req *api.ListDiariesRequest) (*api.ListDiariesResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "list diaries", err)
	}
	ds, err := s.diaries.List(ctx, userID, int(req.Limit), int(req.Offset))
	if err != nil {
		return nil, s.toStatus(ctx, "list diaries", err)
	}
	out := &api.ListDiariesResponse{Diaries: make([]api.Diary, 0, len(ds))}
	for i := range ds {
		out.Diaries = append(out.Diaries, *diaryToAPI(&ds[i]))
	}
	return out, nil
}

func (s *GRPCServer) DeleteDiary(ctx context.Context, req *api.DeleteDiaryRequest) (*api.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "delete diary", err)
	}
	if err := s.diaries.Delete(ctx, userID, req.Date); err != nil {
		return nil, s.toStatus(ctx, "delete diary", err)
	}
	return &api.Empty{}, nil
}
