//go:generate mockgen -source ./server.go -destination=./mocks/store.go -package=mock_grpcserver
package grpcserver

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "gitlab.ozon.dev/pupkingeorgij/order-service/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

var _ pb.OrderServiceServer = (*Server)(nil)

type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (order.Order, error)
	ListOrders(ctx context.Context, userID string, q order.ListQuery) ([]order.Order, int, error)
	CreateOrder(ctx context.Context, userID string, o order.Order) (order.Order, error)
	UpdateOrder(ctx context.Context, o order.Order) (order.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	StreamOrderUpdates(ctx context.Context, orderID string, emit func(order.Event) error) error
}

type Server struct {
	pb.UnimplementedOrderServiceServer
	store  OrderStore
	logger *zap.Logger
}

func NewServer(store OrderStore, logger *zap.Logger) *Server {
	return &Server{
		store:  store,
		logger: logger,
	}
}

func (s *Server) GetOrder(ctx context.Context, req *pb.GetOrderRequest) (*pb.GetOrderResponse, error) {
	l := s.logger.With(zap.String("rpc_method", "GetOrder"), zap.String("order_id", req.OrderId))
	l.Debug("RPC call received")

	o, err := s.store.GetOrder(ctx, req.OrderId)
	if err != nil {
		return nil, s.fail(l, "get_order", "Failed to get order", err)
	}

	l.Info("Order retrieved successfully")
	return &pb.GetOrderResponse{Order: toProtoOrder(o)}, nil
}

func (s *Server) ListOrders(ctx context.Context, req *pb.ListOrdersRequest) (*pb.ListOrdersResponse, error) {
	l := s.logger.With(zap.String("rpc_method", "ListOrders"), zap.String("user_id", req.UserId), zap.Int32("limit", req.Limit), zap.Int32("page", req.Page))
	l.Debug("RPC call received")

	q := order.ListQuery{
		Limit:   int(req.Limit),
		Page:    int(req.Page),
		Filters: req.Filters,
	}
	orders, total, err := s.store.ListOrders(ctx, req.UserId, q)
	if err != nil {
		return nil, s.fail(l, "list_orders", "Failed to list user orders", err)
	}

	protoOrders := make([]*pb.Order, 0, len(orders))
	for _, o := range orders {
		protoOrders = append(protoOrders, toProtoOrder(o))
	}

	l.Info("User orders listed successfully", zap.Int("count", len(protoOrders)))
	return &pb.ListOrdersResponse{Orders: protoOrders, Total: int32(total)}, nil
}

func (s *Server) CreateOrder(ctx context.Context, req *pb.CreateOrderRequest) (*pb.CreateOrderResponse, error) {
	l := s.logger.With(zap.String("rpc_method", "CreateOrder"), zap.String("user_id", req.UserId))
	l.Debug("RPC call received")

	created, err := s.store.CreateOrder(ctx, req.UserId, fromProtoOrder(req.GetOrder()))
	if err != nil {
		return nil, s.fail(l, "create_order", "Failed to add order to storage", err)
	}

	l.Info("Order created successfully", zap.String("order_id", created.ID), zap.Float64("amount", created.Amount))
	return &pb.CreateOrderResponse{Order: toProtoOrder(created)}, nil
}

func (s *Server) UpdateOrder(ctx context.Context, req *pb.UpdateOrderRequest) (*pb.UpdateOrderResponse, error) {
	l := s.logger.With(zap.String("rpc_method", "UpdateOrder"), zap.String("order_id", req.GetOrder().GetId()))
	l.Debug("RPC call received")

	updated, err := s.store.UpdateOrder(ctx, fromProtoOrder(req.GetOrder()))
	if err != nil {
		return nil, s.fail(l, "update_order", "Failed to update order", err)
	}

	l.Info("Order updated successfully", zap.Stringer("status", updated.Status))
	return &pb.UpdateOrderResponse{Order: toProtoOrder(updated)}, nil
}

func (s *Server) DeleteOrder(ctx context.Context, req *pb.DeleteOrderRequest) (*pb.DeleteOrderResponse, error) {
	l := s.logger.With(zap.String("rpc_method", "DeleteOrder"), zap.String("order_id", req.OrderId))
	l.Debug("RPC call received")

	if err := s.store.DeleteOrder(ctx, req.OrderId); err != nil {
		return nil, s.fail(l, "delete_order", "Failed to delete order", err)
	}

	l.Info("Order deleted successfully")
	return &pb.DeleteOrderResponse{Success: true}, nil
}

func (s *Server) StreamOrderUpdates(req *pb.StreamOrderUpdatesRequest, stream pb.OrderUpdatesServerStream) error {
	l := s.logger.With(zap.String("rpc_method", "StreamOrderUpdates"), zap.String("order_id", req.OrderId))
	l.Debug("RPC call received")

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	sent := 0
	err := s.store.StreamOrderUpdates(stream.Context(), req.OrderId, func(ev order.Event) error {
		if err := stream.Send(toProtoUpdate(ev)); err != nil {
			return err
		}
		sent++
		return nil
	})
	if err != nil {
		return s.fail(l.With(zap.Int("sent", sent)), "stream_order_updates", "Order update stream failed", err)
	}

	l.Info("Order update stream finished", zap.Int("sent", sent))
	return nil
}

// fail logs err, counts it against operation and converts it to a gRPC status.
func (s *Server) fail(l *zap.Logger, operation, msg string, err error) error {
	metrics.OperationErrorsTotal.WithLabelValues(operation).Inc()

	code := codeOf(err)
	if code == codes.Internal {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err), zap.Stringer("code", code))
	}
	return status.Error(code, err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, order.ErrInvalidArgument):
		return codes.InvalidArgument
	case errors.Is(err, order.ErrConsumerGone):
		return codes.Canceled
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
