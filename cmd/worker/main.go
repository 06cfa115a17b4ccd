// Worker consumes post.published events from Kafka and notifies the event guests.
// Set DATABASE_URL, KAFKA_BROKERS, NOTIFICATION_KAFKA_TOPIC and KAFKA_GROUP_ID.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-commerce/backend/internal/app"
	"content-commerce/backend/internal/config"
	"content-commerce/backend/internal/db"
	"content-commerce/backend/internal/notification"
	"content-commerce/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("component", "worker")
	slog.SetDefault(logger)

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("worker: shutting down")
		cancel()
	}()

	providers, err := otel.NewProviders(ctx, otel.Config{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName + "-worker",
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

	// No producer: the worker notifies, it never republishes.
	a, err := app.New(cfg, conn, app.Options{Logger: logger, Observer: observer})
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	reader := notification.NewKafkaReader(brokers, cfg.NotificationTopic, cfg.KafkaGroupID)
	defer reader.Close()

	logger.Info("worker: consuming", "topic", cfg.NotificationTopic, "group", cfg.KafkaGroupID)
	consumer := notification.NewConsumer(reader, a.NotifyHandler(logger), logger)
	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("worker: %v", err)
	}
	logger.Info("worker: stopped")
}
