package grpcserver

import (
	pb "gitlab.ozon.dev/pupkingeorgij/order-service/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

func toProtoOrder(o order.Order) *pb.Order {
	items := make([]*pb.Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, &pb.Item{
			Id:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return &pb.Order{
		Id:        o.ID,
		Status:    pb.OrderStatus(o.Status),
		Amount:    o.Amount,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Items:     items,
	}
}

func fromProtoOrder(p *pb.Order) order.Order {
	if p == nil {
		return order.Order{}
	}
	var items []order.Item
	for _, it := range p.Items {
		if it == nil {
			continue
		}
		items = append(items, order.Item{
			ID:       it.Id,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return order.Order{
		ID:        p.Id,
		Status:    order.Status(p.Status),
		Amount:    p.Amount,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Items:     items,
	}
}

func toProtoUpdate(ev order.Event) *pb.StreamOrderUpdatesResponse {
	updateType := pb.UpdateType_STATUS_CHANGED
	if ev.Kind == order.EventCreated {
		updateType = pb.UpdateType_CREATED
	}
	return &pb.StreamOrderUpdatesResponse{
		Order:      toProtoOrder(ev.Order),
		UpdateType: updateType,
		Timestamp:  ev.At.Unix(),
	}
}
