// Command storefront serves the storefront core over gRPC and an
// HTTP/JSON gateway: per-session cart stores, pricing and checkout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"storefront/catalog"
	"storefront/checkout"
	"storefront/config"
	"storefront/kit"
	"storefront/storage"
)

const Name = "storefront"

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.Path)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	products, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	st, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	payments := &checkout.SimulatedGateway{
		Delay:     cfg.Checkout.PaymentDelay,
		FailEvery: cfg.Checkout.FailEvery,
	}
	sessions := NewSessions(st, payments, cfg.Storage.Debounce, logger)
	defer sessions.Close()
	svc := newService(products, sessions, logger)

	conn, err := grpc.NewClient("localhost:"+cfg.Server.Port, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to create gateway connection: %w", err)
	}
	defer conn.Close()
	handler, err := NewGateway(conn, logger)
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sessions.RunEviction(serveCtx, cfg.Sessions.IdleTimeout, cfg.Sessions.IdleTimeout/2)

	var gatewayErr error
	gatewayDone := make(chan struct{})
	go func() {
		defer close(gatewayDone)
		logger.Info("gateway started", zap.String("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			gatewayErr = fmt.Errorf("gateway failed: %w", err)
			logger.Error("stopping after gateway failure", zap.Error(err))
			cancel()
		}
	}()

	logger.Info("starting",
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("debounce", cfg.Storage.Debounce),
		zap.Int("products", len(products.All())),
	)
	serveErr := kit.RunServer(serveCtx,
		kit.ServerConfig{Name: Name, Port: cfg.Server.Port},
		logger,
		func(s *grpc.Server) { RegisterStorefrontServer(s, svc) },
		grpc.ChainUnaryInterceptor(
			kit.UnaryLoggingInterceptor(logger),
			kit.UnaryErrorInterceptor(),
		),
	)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("gateway shutdown", zap.Error(err))
	}
	<-gatewayDone
	if gatewayErr != nil {
		return gatewayErr
	}
	return serveErr
}
