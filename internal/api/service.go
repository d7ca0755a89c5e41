package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "memodiary.v1.MemoDiary"

// FullMethod returns the gRPC method path, e.g. /memodiary.v1.MemoDiary/ListMemos.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// MemoDiaryServer is implemented by the remote service.
type MemoDiaryServer interface {
	CreateMemo(context.Context, *CreateMemoRequest) (*Memo, error)
	GetMemo(context.Context, *GetMemoRequest) (*Memo, error)
	ListMemos(context.Context, *ListMemosRequest) (*ListMemosResponse, error)
	UpdateMemo(context.Context, *UpdateMemoRequest) (*Memo, error)
	DeleteMemo(context.Context, *DeleteMemoRequest) (*Empty, error)
	SearchMemos(context.Context, *SearchMemosRequest) (*ListMemosResponse, error)

	CreateDiary(context.Context, *DiaryRequest) (*Diary, error)
	UpdateDiary(context.Context, *DiaryRequest) (*Diary, error)
	GetDiary(context.Context, *GetDiaryRequest) (*Diary, error)
	ListDiaries(context.Context, *ListDiariesRequest) (*ListDiariesResponse, error)
	DeleteDiary(context.Context, *DeleteDiaryRequest) (*Empty, error)
}

func RegisterMemoDiaryServer(s grpc.ServiceRegistrar, srv MemoDiaryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MemoDiaryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateMemo", MemoDiaryServer.CreateMemo),
		unaryMethod("GetMemo", MemoDiaryServer.GetMemo),
		unaryMethod("ListMemos", MemoDiaryServer.ListMemos),
		unaryMethod("UpdateMemo", MemoDiaryServer.UpdateMemo),
		unaryMethod("DeleteMemo", MemoDiaryServer.DeleteMemo),
		unaryMethod("SearchMemos", MemoDiaryServer.SearchMemos),
		unaryMethod("CreateDiary", MemoDiaryServer.CreateDiary),
		unaryMethod("UpdateDiary", MemoDiaryServer.UpdateDiary),
		unaryMethod("GetDiary", MemoDiaryServer.GetDiary),
		unaryMethod("ListDiaries", MemoDiaryServer.ListDiaries),
		unaryMethod("DeleteDiary", MemoDiaryServer.DeleteDiary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/api/service.go",
}

func unaryMethod[Req, Resp any](name string, call func(MemoDiaryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(MemoDiaryServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MemoDiaryClient is the client stub for MemoDiaryServer.
type MemoDiaryClient struct {
	cc grpc.ClientConnInterface
}

func NewMemoDiaryClient(cc grpc.ClientConnInterface) *MemoDiaryClient {
	return &MemoDiaryClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MemoDiaryClient) CreateMemo(ctx context.Context, in *CreateMemoRequest, opts ...grpc.CallOption) (*Memo, error) {
	return invoke[Memo](ctx, c.cc, "CreateMemo", in, opts)
}

func (c *MemoDiaryClient) GetMemo(ctx context.Context, in *GetMemoRequest, opts ...grpc.CallOption) (*Memo, error) {
	return invoke[Memo](ctx, c.cc, "GetMemo", in, opts)
}

func (c *MemoDiaryClient) ListMemos(ctx context.Context, in *ListMemosRequest, opts ...grpc.CallOption) (*ListMemosResponse, error) {
	return invoke[ListMemosResponse](ctx, c.cc, "ListMemos", in, opts)
}

func (c *MemoDiaryClient) UpdateMemo(ctx context.Context, in *UpdateMemoRequest, opts ...grpc.CallOption) (*Memo, error) {
	return invoke[Memo](ctx, c.cc, "UpdateMemo", in, opts)
}

func (c *MemoDiaryClient) DeleteMemo(ctx context.Context, in *DeleteMemoRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteMemo", in, opts)
}

func (c *MemoDiaryClient) SearchMemos(ctx context.Context, in *SearchMemosRequest, opts ...grpc.CallOption) (*ListMemosResponse, error) {
	return invoke[ListMemosResponse](ctx, c.cc, "SearchMemos", in, opts)
}

func (c *MemoDiaryClient) CreateDiary(ctx context.Context, in *DiaryRequest, opts ...grpc.CallOption) (*Diary, error) {
	return invoke[Diary](ctx, c.cc, "CreateDiary", in, opts)
}

func (c *MemoDiaryClient) UpdateDiary(ctx context.Context, in *DiaryRequest, opts ...grpc.CallOption) (*Diary, error) {
	return invoke[Diary](ctx, c.cc, "UpdateDiary", in, opts)
}

func (c *MemoDiaryClient) GetDiary(ctx context.Context, in *GetDiaryRequest, opts ...grpc.CallOption) (*Diary, error) {
	return invoke[Diary](ctx, c.cc, "GetDiary", in, opts)
}

func (c *MemoDiaryClient) ListDiaries(ctx context.Context, in *ListDiariesRequest, opts ...grpc.CallOption) (*ListDiariesResponse, error) {
	return invoke[ListDiariesResponse](ctx, c.cc, "ListDiaries", in, opts)
}

func (c *MemoDiaryClient) DeleteDiary(ctx context.Context, in *DeleteDiaryRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteDiary", in, opts)
}
