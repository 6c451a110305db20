package events

import (
	"time"

	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

type ItemSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int32   `json:"quantity"`
}

type OrderSnapshot struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Amount    float64        `json:"amount"`
	Address   string         `json:"address"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
	Items     []ItemSnapshot `json:"items"`
}

// Message is the payload written to the event topic.
type Message struct {
	EventID    uuid.UUID     `json:"event_id"`
	Type       string        `json:"type"`
	OrderID    string        `json:"order_id"`
	UserID     string        `json:"user_id,omitempty"`
	Status     string        `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      OrderSnapshot `json:"order"`
}

func NewMessage(ev order.Event) Message {
	items := make([]ItemSnapshot, 0, len(ev.Order.Items))
	for _, it := range ev.Order.Items {
		items = append(items, ItemSnapshot{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	return Message{
		EventID:    uuid.New(),
		Type:       string(ev.Kind),
		OrderID:    ev.Order.ID,
		UserID:     ev.UserID,
		Status:     ev.Order.Status.String(),
		OccurredAt: ev.At.UTC(),
		Order: OrderSnapshot{
			ID:        ev.Order.ID,
			Status:    ev.Order.Status.String(),
			Amount:    ev.Order.Amount,
			Address:   ev.Order.Address,
			CreatedAt: ev.Order.CreatedAt,
			UpdatedAt: ev.Order.UpdatedAt,
			Items:     items,
		},
	}
}
