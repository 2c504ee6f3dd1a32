package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
	"github.com/dmitrijs2005/movieshelf/internal/rpc"
	"github.com/dmitrijs2005/movieshelf/internal/server/services"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	grpclogging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ctxKey struct{}

func withCaller(ctx context.Context, c *services.Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// CallerFromContext returns the principal attached by the auth interceptor.
func CallerFromContext(ctx context.Context) (*services.Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(*services.Caller)
	return c, ok && c != nil
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return !rpc.PublicMethods[c.FullMethod()]
}

func (s *GRPCServer) authFunc(ctx context.Context) (context.Context, error) {
	token, err := auth.AuthFromMD(ctx, common.AuthScheme)
	if err != nil {
		return nil, err
	}

	caller, err := s.accounts.Authenticate(ctx, token)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}

	return withCaller(ctx, caller), nil
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.metrics == nil {
		return handler(ctx, req)
	}
	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}

func (s *GRPCServer) recoverPanic(ctx context.Context, p any) error {
	s.logger.Error(ctx, "panic in handler", "panic", fmt.Sprint(p))
	return status.Error(codes.Internal, "internal error")
}

// interceptorLogger adapts our Logger to the go-grpc-middleware logging API.
func interceptorLogger(l logging.Logger) grpclogging.Logger {
	return grpclogging.LoggerFunc(func(ctx context.Context, lvl grpclogging.Level, msg string, fields ...any) {
		switch lvl {
		case grpclogging.LevelDebug:
			l.Debug(ctx, msg, fields...)
		case grpclogging.LevelInfo:
			l.Info(ctx, msg, fields...)
		case grpclogging.LevelWarn:
			l.Warn(ctx, msg, fields...)
		case grpclogging.LevelError:
			l.Error(ctx, msg, fields...)
		default:
			panic(fmt.Sprintf("unknown level %v", lvl))
		}
	})
}
