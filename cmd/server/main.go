package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	"content-commerce/backend/internal/app"
	"content-commerce/backend/internal/config"
	"content-commerce/backend/internal/db"
	"content-commerce/backend/internal/health"
	"content-commerce/backend/internal/notification"
	"content-commerce/backend/internal/server"
	"content-commerce/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := otel.NewProviders(ctx, otel.Config{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = providers.Shutdown(shutdownCtx)
	}()
	observer, err := otel.NewPipelineObserver(providers.LoggerProvider, providers.MeterProvider.Meter("content-commerce/backend/pipeline"))
	if err != nil {
		log.Fatalf("otel observer: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	producer := notification.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.NotificationTopic)
	defer producer.Close()
	if producer == nil {
		logger.Info("kafka not configured; post notifications run inline")
	}

	a, err := app.New(cfg, conn, app.Options{Logger: logger, Observer: observer, Producer: producer})
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	healthSrv := grpchealth.NewServer()
	s := grpc.NewServer(server.ServerOptions(a.Accounts, logger)...)
	server.RegisterServices(s, server.Deps{
		Accounts: a.Accounts,
		Buying:   a.Buying,
		Social:   a.Social,
		Events:   a.Repos.Social,
		Health:   healthSrv,
	})
	checker := health.NewChecker(conn, a.Policy, healthSrv, logger)
	go checker.Watch(ctx, 15*time.Second, server.ServiceNames...)

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gRPC server")
	healthSrv.Shutdown()
	cancel()
	s.GracefulStop()
	logger.Info("gRPC server stopped")
}
