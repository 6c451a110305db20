package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/events"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/grpcserver"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/interceptor"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/storage"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	envPath := config.LoadEnv()
	cfg := config.Load()

	l := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: config.ServiceName})
	defer func() { _ = l.Sync() }()

	if envPath != "" {
		l.Info("Loaded environment variables", zap.String("path", envPath))
	}
	cfg.Display(l)

	tp, shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: config.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.OTelSampleRate,
	}, l)
	if err != nil {
		l.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, l)
	publisher := events.NewPublisher(producer, events.Config{Topic: cfg.KafkaTopic}, l)
	publisher.Start(context.Background())

	store := storage.New(
		storage.WithLogger(l),
		storage.WithNotifier(publisher),
		storage.WithPaceInterval(cfg.StreamInterval),
		storage.WithMaxTransitions(cfg.StreamMaxTransitions),
	)
	if cfg.SeedDemoData {
		store.SeedDemo()
		l.Info("Demo orders seeded", zap.String("user_id", storage.DemoUserID), zap.Int("orders", store.Len()))
	}

	chain := interceptor.NewChain(
		interceptor.Logging(l),
		interceptor.Metrics(),
		interceptor.Tracing(tp.Tracer(config.ServiceName)),
	)

	srv := server.New(server.Config{
		Addr:            cfg.Addr(),
		AdminAddr:       cfg.AdminAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ServiceName:     config.ServiceName,
	}, grpcserver.NewServer(store, l), chain, l)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := publisher.Shutdown(shutdownCtx); err != nil {
		l.Error("Event publisher shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		l.Error("Tracing shutdown failed", zap.Error(err))
	}

	l.Info("Server gracefully stopped")
}
