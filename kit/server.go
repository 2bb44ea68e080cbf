package kit

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterFunc registers gRPC services on a server.
type RegisterFunc func(*grpc.Server)

// ServerConfig configures a gRPC server.
type ServerConfig struct {
	Name string
	Port string
}

// NewServer builds a gRPC server with the health service registered and
// reporting SERVING.
func NewServer(register RegisterFunc, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(opts...)
	register(s)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return s, healthServer
}

// RunServer starts a gRPC server with health checks on cfg.Port.
//
// Blocks until the server exits. Cancelling ctx marks the server
// NOT_SERVING and stops it gracefully.
func RunServer(ctx context.Context, cfg ServerConfig, logger *zap.Logger, register RegisterFunc, opts ...grpc.ServerOption) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}

	s, healthServer := NewServer(register, opts...)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("shutting down server", zap.String("name", cfg.Name))
			healthServer.Shutdown()
			s.GracefulStop()
		case <-stopped:
		}
	}()

	logger.Info("server started",
		zap.String("name", cfg.Name),
		zap.String("port", cfg.Port),
	)

	if err := s.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
