// Package storage keeps orders in process memory.
//
// A single mutex guards both the primary map and the per-user index. Every
// value handed out is a copy, and no lock is held while waiting or writing to
// a subscriber.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

const (
	DefaultPaceInterval   = 5 * time.Second
	DefaultMaxTransitions = 5
)

// Notifier receives a copy of every change. It is called without the store
// lock held and must not block.
type Notifier interface {
	Notify(e order.Event)
}

type Store struct {
	mu     sync.Mutex
	orders map[string]order.Order
	// byUser lists order IDs in creation order; owner is its inverse.
	byUser map[string][]string
	owner  map[string]string

	notifier       Notifier
	logger         *zap.Logger
	paceInterval   time.Duration
	maxTransitions int
	timeNow        func() time.Time
	newID          func() string
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithPaceInterval sets the delay before each simulated status transition.
func WithPaceInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.paceInterval = d
		}
	}
}

func WithMaxTransitions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxTransitions = n
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		orders:         make(map[string]order.Order),
		byUser:         make(map[string][]string),
		owner:          make(map[string]string),
		logger:         zap.NewNop(),
		paceInterval:   DefaultPaceInterval,
		maxTransitions: DefaultMaxTransitions,
		timeNow:        time.Now,
		newID:          order.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) GetOrder(_ context.Context, orderID string) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return order.Order{}, fmt.Errorf("order %q: %w", orderID, order.ErrNotFound)
	}
	return o.Clone(), nil
}

// ListOrders returns every order owned by userID, oldest first, and their
// count. The query is normalized but does not page or filter the result.
func (s *Store) ListOrders(_ context.Context, userID string, q order.ListQuery) ([]order.Order, int, error) {
	q = q.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.byUser[userID]
	if !ok || len(ids) == 0 {
		return nil, 0, fmt.Errorf("orders of user %q: %w", userID, order.ErrNotFound)
	}

	out := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.orders[id].Clone())
	}

	s.logger.Debug("Listed user orders",
		zap.String("user_id", userID),
		zap.Int("limit", q.Limit),
		zap.Int("page", q.Page),
		zap.Int("count", len(out)))
	return out, len(out), nil
}

// CreateOrder stores o under a fresh ID for userID. Status, timestamps and
// amount supplied by the caller are overwritten.
func (s *Store) CreateOrder(_ context.Context, userID string, o order.Order) (order.Order, error) {
	now := s.timeNow()

	o = o.Clone()
	o.Status = order.Pending
	o.CreatedAt = now.Unix()
	o.UpdatedAt = now.Unix()
	o.Amount = order.Total(o.Items)

	s.mu.Lock()
	o.ID = s.newID()
	s.insertLocked(userID, o)
	stored := o.Clone()
	size := len(s.orders)
	s.mu.Unlock()

	metrics.OrdersCreatedTotal.Inc()
	metrics.StoredOrders.Set(float64(size))
	s.notify(order.EventCreated, userID, stored, now)
	return stored, nil
}

// UpdateOrder replaces the stored order with the same ID wholesale.
func (s *Store) UpdateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	if _, ok := s.orders[o.ID]; !ok {
		s.mu.Unlock()
		return order.Order{}, fmt.Errorf("order %q: %w", o.ID, order.ErrNotFound)
	}
	s.orders[o.ID] = o.Clone()
	userID := s.owner[o.ID]
	stored := o.Clone()
	s.mu.Unlock()

	s.notify(order.EventUpdated, userID, stored, s.timeNow())
	return stored, nil
}

// DeleteOrder removes the order and drops it from its owner's index.
func (s *Store) DeleteOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("order %q: %w", orderID, order.ErrNotFound)
	}
	delete(s.orders, orderID)
	userID := s.owner[orderID]
	delete(s.owner, orderID)
	s.unindexLocked(userID, orderID)
	size := len(s.orders)
	s.mu.Unlock()

	metrics.OrdersDeletedTotal.Inc()
	metrics.StoredOrders.Set(float64(size))
	s.notify(order.EventDeleted, userID, o, s.timeNow())
	return nil
}

// Seed inserts orders for userID exactly as given, keeping their IDs,
// statuses and amounts. Orders without an ID get one.
func (s *Store) Seed(userID string, orders ...order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range orders {
		if o.ID == "" {
			o.ID = s.newID()
		}
		s.insertLocked(userID, o.Clone())
	}
	metrics.StoredOrders.Set(float64(len(s.orders)))
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) insertLocked(userID string, o order.Order) {
	if prev, ok := s.owner[o.ID]; ok {
		s.unindexLocked(prev, o.ID)
	}
	s.orders[o.ID] = o
	s.owner[o.ID] = userID
	s.byUser[userID] = append(s.byUser[userID], o.ID)
}

func (s *Store) unindexLocked(userID, orderID string) {
	ids := s.byUser[userID]
	for i, id := range ids {
		if id == orderID {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.byUser, userID)
		return
	}
	s.byUser[userID] = ids
}

func (s *Store) notify(kind order.EventKind, userID string, o order.Order, at time.Time) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(order.Event{Kind: kind, UserID: userID, Order: o, At: at})
}
