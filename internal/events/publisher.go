// Package events publishes order changes to a message topic in the background.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

const (
	DefaultTopic         = "order_events"
	DefaultWorkers       = 1
	DefaultBatchSize     = 10
	DefaultFlushInterval = time.Second
	DefaultSendTimeout   = 5 * time.Second
)

type Config struct {
	Topic         string
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	// Buffer is the number of events Notify can queue before it starts
	// dropping. Zero derives it from Workers and BatchSize.
	Buffer      int
	SendTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.Buffer <= 0 {
		c.Buffer = c.Workers * c.BatchSize * 2
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	return c
}

// Publisher batches order events and hands them to a Producer from a pool of
// workers. Notify never blocks the caller.
type Publisher struct {
	producer kafka.Producer
	cfg      Config
	logger   *zap.Logger

	inputChan  chan order.Event
	batchChan  chan []order.Event
	shutdownCh chan struct{}
	once       sync.Once

	// mu orders Notify's sends against Shutdown closing the input.
	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

func NewPublisher(producer kafka.Producer, cfg Config, logger *zap.Logger) *Publisher {
	cfg = cfg.withDefaults()
	return &Publisher{
		producer:   producer,
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "events"), zap.String("topic", cfg.Topic)),
		inputChan:  make(chan order.Event, cfg.Buffer),
		batchChan:  make(chan []order.Event, cfg.Workers*2),
		shutdownCh: make(chan struct{}),
	}
}

// Start launches the aggregator and the workers. Cancelling ctx has the same
// effect as calling Shutdown.
func (p *Publisher) Start(ctx context.Context) {
	p.logger.Info("Starting event publisher", zap.Int("workers", p.cfg.Workers), zap.Int("batch_size", p.cfg.BatchSize))

	p.wg.Add(1)
	go p.runAggregator()

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}

	go p.monitorShutdown(ctx)
}

// Notify queues ev for publishing. When the buffer is full or the publisher
// is shut down the event is dropped and counted.
func (p *Publisher) Notify(ev order.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		metrics.EventsDroppedTotal.Inc()
		p.logger.Debug("Publisher is shut down, dropping event", zap.String("order_id", ev.Order.ID))
		return
	}

	select {
	case p.inputChan <- ev:
	default:
		metrics.EventsDroppedTotal.Inc()
		p.logger.Warn("Event buffer is full, dropping event",
			zap.String("order_id", ev.Order.ID),
			zap.String("type", string(ev.Kind)))
	}
}

// Shutdown stops accepting events, flushes what is queued and closes the
// producer. The producer is closed even when ctx expires before the queue is
// drained. Only the first call does any work.
func (p *Publisher) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		p.logger.Info("Initiating event publisher shutdown")
		p.mu.Lock()
		p.closed = true
		close(p.shutdownCh)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.dropQueued()
			p.logger.Info("Event publisher drained")
		case <-ctx.Done():
			p.logger.Warn("Event publisher shutdown interrupted, closing producer", zap.Error(ctx.Err()))
			err = ctx.Err()
		}

		if cerr := p.producer.Close(); cerr != nil {
			p.logger.Error("Failed to close producer", zap.Error(cerr))
			err = errors.Join(err, fmt.Errorf("close producer: %w", cerr))
		}
	})
	return err
}

// dropQueued counts events left in the input buffer when nothing was running
// to drain it.
func (p *Publisher) dropQueued() {
	for {
		select {
		case ev := <-p.inputChan:
			metrics.EventsDroppedTotal.Inc()
			p.logger.Warn("Publisher was not started, dropping queued event", zap.String("order_id", ev.Order.ID))
		default:
			return
		}
	}
}

func (p *Publisher) monitorShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		p.logger.Debug("Context cancellation detected")
		_ = p.Shutdown(context.Background())
	case <-p.shutdownCh:
	}
}

func (p *Publisher) runAggregator() {
	defer p.wg.Done()

	var (
		batch    []order.Event
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		close(p.batchChan)
	}()

	for {
		select {
		case ev := <-p.inputChan:
			batch = append(batch, ev)
			if len(batch) >= p.cfg.BatchSize {
				p.dispatchBatch(batch)
				batch = nil
				timeoutC = nil
			} else if len(batch) == 1 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(p.cfg.FlushInterval)
				timeoutC = timer.C
			}

		case <-timeoutC:
			p.dispatchBatch(batch)
			batch = nil
			timeoutC = nil

		case <-p.shutdownCh:
			for {
				select {
				case ev := <-p.inputChan:
					batch = append(batch, ev)
					if len(batch) >= p.cfg.BatchSize {
						p.dispatchBatch(batch)
						batch = nil
					}
				default:
					if len(batch) > 0 {
						p.dispatchBatch(batch)
					}
					return
				}
			}
		}
	}
}

func (p *Publisher) dispatchBatch(batch []order.Event) {
	batchCopy := make([]order.Event, len(batch))
	copy(batchCopy, batch)
	p.batchChan <- batchCopy
}

func (p *Publisher) runWorker(id int) {
	defer p.wg.Done()
	l := p.logger.With(zap.Int("worker", id))
	l.Debug("Worker started")

	for batch := range p.batchChan {
		p.publishBatch(l, batch)
	}
	l.Debug("Worker exiting")
}

func (p *Publisher) publishBatch(l *zap.Logger, batch []order.Event) {
	for _, ev := range batch {
		value, err := json.Marshal(NewMessage(ev))
		if err != nil {
			metrics.EventsDroppedTotal.Inc()
			l.Error("Failed to marshal event", zap.String("order_id", ev.Order.ID), zap.Error(err))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.SendTimeout)
		err = p.producer.SendMessage(ctx, p.cfg.Topic, []byte(ev.Order.ID), value)
		cancel()
		if err != nil {
			metrics.EventsDroppedTotal.Inc()
			l.Error("Failed to publish event",
				zap.String("order_id", ev.Order.ID),
				zap.String("type", string(ev.Kind)),
				zap.Error(err))
			continue
		}
		metrics.EventsPublishedTotal.Inc()
	}
	l.Debug("Batch published", zap.Int("size", len(batch)))
}
