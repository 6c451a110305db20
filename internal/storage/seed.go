package storage

import (
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

const DemoUserID = "user1"

// SeedDemo installs the demo orders owned by DemoUserID: a completed laptop
// order and a pending smartphone order.
func (s *Store) SeedDemo() {
	now := s.timeNow().Unix()

	laptop := []order.Item{{ID: s.newID(), Name: "Laptop", Price: 100.5, Quantity: 1}}
	phone := []order.Item{{ID: s.newID(), Name: "Smartphone", Price: 34.0, Quantity: 2}}

	s.Seed(DemoUserID,
		order.Order{
			Status:    order.Completed,
			Amount:    order.Total(laptop),
			Address:   "123 Maple Street",
			CreatedAt: now,
			UpdatedAt: now,
			Items:     laptop,
		},
		order.Order{
			Status:    order.Pending,
			Amount:    order.Total(phone),
			Address:   "567 Wallnut street",
			CreatedAt: now,
			UpdatedAt: now,
			Items:     phone,
		},
	)
}
