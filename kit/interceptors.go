package kit

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryErrorInterceptor converts handler errors to gRPC status errors
// with MapCommandError, so handlers can return CommandErrors directly.
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, MapCommandError(err)
		}
		return resp, nil
	}
}

// UnaryLoggingInterceptor logs every call with its outcome. Rejections are
// logged at Info, internal failures at Error.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err == nil {
			logger.Debug("call handled", fields...)
			return resp, nil
		}
		if cmdErr, ok := AsCommandError(err); ok {
			logger.Info("call rejected", append(fields,
				zap.String("code", cmdErr.Code.String()),
				zap.String("reason", cmdErr.Message))...)
			return resp, err
		}
		if st, ok := status.FromError(err); ok {
			logger.Info("call rejected", append(fields,
				zap.String("code", st.Code().String()),
				zap.String("reason", st.Message()))...)
			return resp, err
		}
		logger.Error("call failed", append(fields, zap.Error(err))...)
		return resp, err
	}
}
