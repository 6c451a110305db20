package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/events"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	config.LoadEnv()
	cfg := config.Load()

	l := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "order-events-consumer"})
	defer func() { _ = l.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		l.Fatal("KAFKA_BROKERS is not set")
	}

	l.Info("Starting Kafka consumer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID))

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		l.Info("Closing Kafka reader")
		if err := r.Close(); err != nil {
			l.Error("Error closing Kafka reader", zap.Error(err))
		}
	}()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				l.Info("Shutdown signal received, stopping consumer")
				return
			}
			l.Error("Error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		var msg events.Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			l.Warn("Skipping malformed event",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			continue
		}

		l.Info("Order event received",
			zap.String("event_id", msg.EventID.String()),
			zap.String("type", msg.Type),
			zap.String("order_id", msg.OrderID),
			zap.String("user_id", msg.UserID),
			zap.String("status", msg.Status),
			zap.Float64("amount", msg.Order.Amount),
			zap.Time("occurred_at", msg.OccurredAt),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset))
	}
}
