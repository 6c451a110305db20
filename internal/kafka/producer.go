//go:generate mockgen -source ./producer.go -destination=./mocks/producer.go -package=mock_kafka
package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// ConsoleProducer logs messages instead of sending them. It is used when no
// brokers are configured.
type ConsoleProducer struct {
	logger *zap.Logger
}

func NewConsoleProducer(logger *zap.Logger) *ConsoleProducer {
	logger.Info("Initialized console Kafka producer")
	return &ConsoleProducer{logger: logger}
}

func (p *ConsoleProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	if err := ctx.Err(); err != nil {
		p.logger.Warn("Kafka producer send cancelled", zap.String("topic", topic), zap.ByteString("key", key))
		return err
	}
	p.logger.Info("KAFKA_PRODUCER (CONSOLE)",
		zap.String("topic", topic),
		zap.ByteString("key", key),
		zap.ByteString("value", value))
	return nil
}

func (p *ConsoleProducer) Close() error {
	p.logger.Info("Closing console Kafka producer")
	return nil
}

// WriterProducer sends messages through a kafka-go Writer. Messages with the
// same key land on the same partition.
type WriterProducer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

func NewWriterProducer(brokers []string, logger *zap.Logger) *WriterProducer {
	logger.Info("Initialized Kafka producer", zap.Strings("brokers", brokers))
	return &WriterProducer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

func (p *WriterProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}
	return nil
}

func (p *WriterProducer) Close() error {
	p.logger.Info("Closing Kafka producer")
	return p.writer.Close()
}

// NewProducer picks the kafka-go producer when brokers are configured and the
// console producer otherwise.
func NewProducer(brokers []string, logger *zap.Logger) Producer {
	if len(brokers) == 0 {
		return NewConsoleProducer(logger)
	}
	return NewWriterProducer(brokers, logger)
}
