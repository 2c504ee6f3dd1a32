// Package grpc serves the RemoteStore contract over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/movieshelf/internal/logging"
	"github.com/dmitrijs2005/movieshelf/internal/rpc"
	"github.com/dmitrijs2005/movieshelf/internal/server/metrics"
	"github.com/dmitrijs2005/movieshelf/internal/server/models"
	"github.com/dmitrijs2005/movieshelf/internal/server/services"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	grpclogging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
)

type Accounts interface {
	CreateIdentity(ctx context.Context, email, password, name string) (*models.User, error)
	CreateSession(ctx context.Context, email, password, previous string) (*services.SignedSession, error)
	Authenticate(ctx context.Context, token string) (*services.Caller, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type Documents interface {
	List(ctx context.Context, callerID string, q models.DocumentQuery) ([]*models.Document, error)
	Create(ctx context.Context, callerID, collection string, fields map[string]any) (*models.Document, error)
	Update(ctx context.Context, callerID, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error)
	Delete(ctx context.Context, callerID, collection, id string) error
}

type GRPCServer struct {
	rpc.UnimplementedRemoteStoreServer
	address   string
	accounts  Accounts
	documents Documents
	logger    logging.Logger
	metrics   *metrics.Collector
	limiter   *RateLimiter
}

func NewGRPCServer(address string, l logging.Logger, accounts Accounts, documents Documents, m *metrics.Collector, limiter *RateLimiter) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		accounts:  accounts,
		documents: documents,
		metrics:   m,
		limiter:   limiter,
	}
}

// NewServer builds the gRPC server with the interceptor chain and the
// RemoteStore service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{
		s.metricsInterceptor,
		grpclogging.UnaryServerInterceptor(interceptorLogger(s.logger),
			grpclogging.WithLogOnEvents(grpclogging.FinishCall)),
		recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(s.recoverPanic)),
		selector.UnaryServerInterceptor(auth.UnaryServerInterceptor(s.authFunc), selector.MatchFunc(requiresAuth)),
	}
	if s.limiter != nil {
		chain = append(chain, s.limiter.UnaryServerInterceptor(s.metrics))
	}

	srv := grpc.NewServer(append(opts, grpc.ChainUnaryInterceptor(chain...))...)
	rpc.RegisterRemoteStoreServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
