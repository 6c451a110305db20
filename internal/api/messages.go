package api

import "fmt"

type OrderStatus int32

const (
	OrderStatus_PENDING    OrderStatus = 0
	OrderStatus_PROCESSING OrderStatus = 1
	OrderStatus_SHIPPED    OrderStatus = 2
	OrderStatus_DELIVERED  OrderStatus = 3
	OrderStatus_COMPLETED  OrderStatus = 4
)

var OrderStatus_name = map[int32]string{
	0: "PENDING",
	1: "PROCESSING",
	2: "SHIPPED",
	3: "DELIVERED",
	4: "COMPLETED",
}

func (s OrderStatus) String() string {
	if name, ok := OrderStatus_name[int32(s)]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int32(s))
}

type UpdateType int32

const (
	UpdateType_UPDATE_TYPE_UNSPECIFIED UpdateType = 0
	UpdateType_CREATED                 UpdateType = 1
	UpdateType_STATUS_CHANGED          UpdateType = 2
)

func (t UpdateType) String() string {
	switch t {
	case UpdateType_CREATED:
		return "CREATED"
	case UpdateType_STATUS_CHANGED:
		return "STATUS_CHANGED"
	default:
		return "UPDATE_TYPE_UNSPECIFIED"
	}
}

type Item struct {
	Id       string  `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Quantity int32   `json:"quantity,omitempty"`
}

type Order struct {
	Id        string      `json:"id,omitempty"`
	Status    OrderStatus `json:"status"`
	Amount    float64     `json:"amount,omitempty"`
	Address   string      `json:"address,omitempty"`
	CreatedAt int64       `json:"created_at,omitempty"`
	UpdatedAt int64       `json:"updated_at,omitempty"`
	Items     []*Item     `json:"items,omitempty"`
}

func (o *Order) GetId() string {
	if o == nil {
		return ""
	}
	return o.Id
}

type GetOrderRequest struct {
	OrderId string `json:"order_id,omitempty"`
}

type GetOrderResponse struct {
	Order *Order `json:"order,omitempty"`
}

// ListOrdersRequest carries paging hints and filters. The service accepts
// them but always answers with the user's full order list.
type ListOrdersRequest struct {
	UserId  string            `json:"user_id,omitempty"`
	Limit   int32             `json:"limit,omitempty"`
	Page    int32             `json:"page,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders,omitempty"`
	Total  int32    `json:"total"`
}

type CreateOrderRequest struct {
	UserId string `json:"user_id,omitempty"`
	Order  *Order `json:"order,omitempty"`
}

func (r *CreateOrderRequest) GetOrder() *Order {
	if r == nil {
		return nil
	}
	return r.Order
}

type CreateOrderResponse struct {
	Order *Order `json:"order,omitempty"`
}

type UpdateOrderRequest struct {
	Order *Order `json:"order,omitempty"`
}

func (r *UpdateOrderRequest) GetOrder() *Order {
	if r == nil {
		return nil
	}
	return r.Order
}

type UpdateOrderResponse struct {
	Order *Order `json:"order,omitempty"`
}

type DeleteOrderRequest struct {
	OrderId string `json:"order_id,omitempty"`
}

type DeleteOrderResponse struct {
	Success bool `json:"success"`
}

type StreamOrderUpdatesRequest struct {
	OrderId string `json:"order_id,omitempty"`
}

type StreamOrderUpdatesResponse struct {
	Order      *Order     `json:"order,omitempty"`
	UpdateType UpdateType `json:"update_type"`
	Timestamp  int64      `json:"timestamp,omitempty"`
}
