package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/api"
	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	accessToken string
	conn        *grpc.ClientConn
	client      *api.MemoDiaryClient
}

// NewGRPCClient creates a client for endpointURL. The connection is
// established lazily on the first call. Extra dial options are appended
// after the defaults.
func NewGRPCClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("create grpc client for %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.client = api.NewMemoDiaryClient(conn)
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.accessToken != "" {
		ctx = withAccessToken(ctx, c.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) CreateMemo(ctx context.Context, d models.MemoDraft) (*models.Memo, error) {
	resp, err := c.client.CreateMemo(ctx, &api.CreateMemoRequest{Content: d.Content, Tags: d.Tags, DiaryDate: d.DiaryDate})
	if err != nil {
		return nil, mapError(err)
	}
	m := memoFromAPI(resp)
	return &m, nil
}

func (c *GRPCClient) GetMemo(ctx context.Context, id string) (*models.Memo, error) {
	resp, err := c.client.GetMemo(ctx, &api.GetMemoRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	m := memoFromAPI(resp)
	return &m, nil
}

func (c *GRPCClient) ListMemos(ctx context.Context, q models.MemoQuery) ([]models.Memo, error) {
	resp, err := c.client.ListMemos(ctx, &api.ListMemosRequest{
		Filter: string(q.Filter),
		Limit:  int32(max(q.Limit, 0)),
		Offset: int32(max(q.Offset, 0)),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return memosFromAPI(resp.Memos), nil
}

func (c *GRPCClient) UpdateMemo(ctx context.Context, id string, p models.MemoPatch) (*models.Memo, error) {
	resp, err := c.client.UpdateMemo(ctx, &api.UpdateMemoRequest{
		ID:        id,
		Content:   p.Content,
		Tags:      p.Tags,
		Archived:  p.Archived,
		DiaryDate: p.DiaryDate,
	})
	if err != nil {
		return nil, mapError(err)
	}
	m := memoFromAPI(resp)
	return &m, nil
}

func (c *GRPCClient) DeleteMemo(ctx context.Context, id string) error {
	_, err := c.client.DeleteMemo(ctx, &api.DeleteMemoRequest{ID: id})
	return mapError(err)
}

func (c *GRPCClient) SearchMemos(ctx context.Context, query string, limit int) ([]models.Memo, error) {
	resp, err := c.client.SearchMemos(ctx, &api.SearchMemosRequest{Query: query, Limit: int32(max(limit, 0))})
	if err != nil {
		return nil, mapError(err)
	}
	return memosFromAPI(resp.Memos), nil
}

func (c *GRPCClient) CreateDiary(ctx context.Context, date string, d models.DiaryDraft) (*models.Diary, error) {
	resp, err := c.client.CreateDiary(ctx, diaryRequest(date, d))
	if err != nil {
		return nil, mapError(err)
	}
	out := diaryFromAPI(resp)
	return &out, nil
}

func (c *GRPCClient) UpdateDiary(ctx context.Context, date string, d models.DiaryDraft) (*models.Diary, error) {
	resp, err := c.client.UpdateDiary(ctx, diaryRequest(date, d))
	if err != nil {
		return nil, mapError(err)
	}
	out := diaryFromAPI(resp)
	return &out, nil
}

func (c *GRPCClient) GetDiary(ctx context.Context, date string) (*models.Diary, error) {
	resp, err := c.client.GetDiary(ctx, &api.GetDiaryRequest{Date: date})
	if err != nil {
		return nil, mapError(err)
	}
	out := diaryFromAPI(resp)
	return &out, nil
}

func (c *GRPCClient) ListDiaries(ctx context.Context, limit, offset int) ([]models.Diary, error) {
	resp, err := c.client.ListDiaries(ctx, &api.ListDiariesRequest{Limit: int32(max(limit, 0)), Offset: int32(max(offset, 0))})
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]models.Diary, 0, len(resp.Diaries))
	for i := range resp.Diaries {
		out = append(out, diaryFromAPI(&resp.Diaries[i]))
	}
	return out, nil
}

func (c *GRPCClient) DeleteDiary(ctx context.Context, date string) error {
	_, err := c.client.DeleteDiary(ctx, &api.DeleteDiaryRequest{Date: date})
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", ErrServer, st.Code(), st.Message())
	}
}

func memoFromAPI(m *api.Memo) models.Memo {
	return models.Memo{
		ID:        m.ID,
		Content:   m.Content,
		Tags:      m.Tags,
		Archived:  m.Archived,
		DiaryDate: m.DiaryDate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func memosFromAPI(in []api.Memo) []models.Memo {
	out := make([]models.Memo, 0, len(in))
	for i := range in {
		out = append(out, memoFromAPI(&in[i]))
	}
	return out
}

func diaryRequest(date string, d models.DiaryDraft) *api.DiaryRequest {
	return &api.DiaryRequest{
		Date:         date,
		Summary:      d.Summary,
		MoodKey:      d.MoodKey,
		MoodScore:    int32(d.MoodScore),
		CoverImageID: d.CoverImageID,
	}
}

func diaryFromAPI(d *api.Diary) models.Diary {
	return models.Diary{
		Date:         d.Date,
		Summary:      d.Summary,
		MoodKey:      d.MoodKey,
		MoodScore:    int(d.MoodScore),
		CoverImageID: d.CoverImageID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
