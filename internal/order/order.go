// Package order holds the domain model shared by the store and the transport.
package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConsumerGone is returned when a stream write fails because the
	// subscriber went away.
	ErrConsumerGone = errors.New("consumer gone")
)

// Item is a priced line of an order. Items live only inside their order.
type Item struct {
	ID       string
	Name     string
	Price    float64
	Quantity int32
}

type Order struct {
	ID        string
	Status    Status
	Amount    float64
	Address   string
	CreatedAt int64
	UpdatedAt int64
	Items     []Item
}

// Clone returns a copy that shares no memory with o.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]Item, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// Total sums price × quantity over items.
func Total(items []Item) float64 {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt32(it.Quantity))
		sum = sum.Add(line)
	}
	total, _ := sum.Float64()
	return total
}

// NewID returns a random identifier in the 8-4-4-4-12 hex layout.
// Collisions are not checked by callers.
func NewID() string {
	return uuid.NewString()
}

const (
	DefaultLimit = 10
	DefaultPage  = 1
)

// ListQuery carries the listing hints a client sends. Limit, Page and
// Filters are accepted but do not narrow the result.
type ListQuery struct {
	Limit   int
	Page    int
	Filters map[string]string
}

func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	return q
}

type EventKind string

const (
	EventCreated       EventKind = "created"
	EventUpdated       EventKind = "updated"
	EventDeleted       EventKind = "deleted"
	EventStatusChanged EventKind = "status_changed"
)

// Event describes a change to one order. Order is a private copy.
type Event struct {
	Kind   EventKind
	UserID string
	Order  Order
	At     time.Time
}
