package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

// StreamOrderUpdates sends the current snapshot of the order to emit and then
// walks it through the delivery states, one step per pace interval.
//
// The call returns nil when the transition budget is spent, the order reaches
// a terminal status, or ctx is cancelled. A failed emit that was not caused by
// cancellation returns order.ErrConsumerGone.
func (s *Store) StreamOrderUpdates(ctx context.Context, orderID string, emit func(order.Event) error) error {
	if orderID == "" {
		return fmt.Errorf("order id is required: %w", order.ErrInvalidArgument)
	}

	s.mu.Lock()
	current, ok := s.orders[orderID]
	userID := s.owner[orderID]
	snapshot := current.Clone()
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("order %q: %w", orderID, order.ErrNotFound)
	}

	l := s.logger.With(zap.String("order_id", orderID))

	if err := emit(order.Event{Kind: order.EventCreated, UserID: userID, Order: snapshot, At: s.timeNow()}); err != nil {
		l.Debug("Subscriber rejected initial snapshot", zap.Error(err))
		return fmt.Errorf("initial snapshot: %w", order.ErrConsumerGone)
	}
	if snapshot.Status.IsTerminal() {
		return nil
	}

	timer := time.NewTimer(s.paceInterval)
	defer timer.Stop()

	for transitions := 0; transitions < s.maxTransitions; {
		select {
		case <-ctx.Done():
			l.Debug("Subscription cancelled", zap.Int("transitions", transitions))
			return nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return nil
		}

		ev, advanced, err := s.advance(orderID)
		if err != nil {
			return err
		}
		if !advanced {
			return nil
		}
		transitions++

		metrics.StatusTransitionsTotal.WithLabelValues(ev.Order.Status.String()).Inc()
		s.notify(ev.Kind, ev.UserID, ev.Order.Clone(), ev.At)

		if err := emit(ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Debug("Subscriber went away", zap.Error(err))
			return fmt.Errorf("status update: %w", order.ErrConsumerGone)
		}
		if ev.Order.Status.IsTerminal() {
			return nil
		}
		timer.Reset(s.paceInterval)
	}
	return nil
}

// advance moves the order one status forward under the lock. advanced is
// false when the order is already terminal.
func (s *Store) advance(orderID string) (ev order.Event, advanced bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return order.Event{}, false, fmt.Errorf("order %q removed during stream: %w", orderID, order.ErrNotFound)
	}
	next, ok := o.Status.Next()
	if !ok {
		return order.Event{}, false, nil
	}

	now := s.timeNow()
	o.Status = next
	o.UpdatedAt = now.Unix()
	s.orders[orderID] = o

	return order.Event{
		Kind:   order.EventStatusChanged,
		UserID: s.owner[orderID],
		Order:  o.Clone(),
		At:     now,
	}, true, nil
}
