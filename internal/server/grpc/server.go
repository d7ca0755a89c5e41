// Package grpc exposes the memo and diary services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/memodiary/internal/api"
	"github.com/dmitrijs2005/memodiary/internal/logging"
	"github.com/dmitrijs2005/memodiary/internal/server/models"
	"github.com/dmitrijs2005/memodiary/internal/server/services"
	"google.golang.org/grpc"
)

type memoService interface {
	Create(ctx context.Context, userID string, in services.MemoInput) (*models.Memo, error)
	Get(ctx context.Context, userID, id string) (*models.Memo, error)
	List(ctx context.Context, userID string, filter models.MemoFilter, limit, offset int) ([]models.Memo, error)
	Search(ctx context.Context, userID, query string, limit int) ([]models.Memo, error)
	Update(ctx context.Context, userID, id string, p models.MemoPatch) (*models.Memo, error)
	Delete(ctx context.Context, userID, id string) error
}

type diaryService interface {
	Create(ctx context.Context, userID, date string, in services.DiaryInput) (*models.Diary, error)
	Update(ctx context.Context, userID, date string, in services.DiaryInput) (*models.Diary, error)
	Get(ctx context.Context, userID, date string) (*models.Diary, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Diary, error)
	Delete(ctx context.Context, userID, date string) error
}

type GRPCServer struct {
	address   string
	memos     memoService
	diaries   diaryService
	logger    logging.Logger
	jwtSecret []byte
}

var _ api.MemoDiaryServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, ms memoService, ds diaryService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		memos:     ms,
		diaries:   ds,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterMemoDiaryServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
