package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "order_service.v1.OrderService"

const (
	GetOrderMethod           = "/order_service.v1.OrderService/GetOrder"
	ListOrdersMethod         = "/order_service.v1.OrderService/ListOrders"
	CreateOrderMethod        = "/order_service.v1.OrderService/CreateOrder"
	UpdateOrderMethod        = "/order_service.v1.OrderService/UpdateOrder"
	DeleteOrderMethod        = "/order_service.v1.OrderService/DeleteOrder"
	StreamOrderUpdatesMethod = "/order_service.v1.OrderService/StreamOrderUpdates"
)

type OrderServiceClient interface {
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error)
	UpdateOrder(ctx context.Context, in *UpdateOrderRequest, opts ...grpc.CallOption) (*UpdateOrderResponse, error)
	DeleteOrder(ctx context.Context, in *DeleteOrderRequest, opts ...grpc.CallOption) (*DeleteOrderResponse, error)
	StreamOrderUpdates(ctx context.Context, in *StreamOrderUpdatesRequest, opts ...grpc.CallOption) (OrderUpdatesClientStream, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

func (c *orderServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	out := new(GetOrderResponse)
	if err := c.invoke(ctx, GetOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.invoke(ctx, ListOrdersMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	out := new(CreateOrderResponse)
	if err := c.invoke(ctx, CreateOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) UpdateOrder(ctx context.Context, in *UpdateOrderRequest, opts ...grpc.CallOption) (*UpdateOrderResponse, error) {
	out := new(UpdateOrderResponse)
	if err := c.invoke(ctx, UpdateOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) DeleteOrder(ctx context.Context, in *DeleteOrderRequest, opts ...grpc.CallOption) (*DeleteOrderResponse, error) {
	out := new(DeleteOrderResponse)
	if err := c.invoke(ctx, DeleteOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) StreamOrderUpdates(ctx context.Context, in *StreamOrderUpdatesRequest, opts ...grpc.CallOption) (OrderUpdatesClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &OrderService_ServiceDesc.Streams[0], StreamOrderUpdatesMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &orderUpdatesClientStream{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type OrderUpdatesClientStream interface {
	Recv() (*StreamOrderUpdatesResponse, error)
	grpc.ClientStream
}

type orderUpdatesClientStream struct {
	grpc.ClientStream
}

func (x *orderUpdatesClientStream) Recv() (*StreamOrderUpdatesResponse, error) {
	m := new(StreamOrderUpdatesResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderServiceServer is implemented by the order service. Implementations
// must embed UnimplementedOrderServiceServer.
type OrderServiceServer interface {
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
	UpdateOrder(context.Context, *UpdateOrderRequest) (*UpdateOrderResponse, error)
	DeleteOrder(context.Context, *DeleteOrderRequest) (*DeleteOrderResponse, error)
	StreamOrderUpdates(*StreamOrderUpdatesRequest, OrderUpdatesServerStream) error
	mustEmbedUnimplementedOrderServiceServer()
}

type UnimplementedOrderServiceServer struct{}

func (UnimplementedOrderServiceServer) GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrder not implemented")
}

func (UnimplementedOrderServiceServer) ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOrders not implemented")
}

func (UnimplementedOrderServiceServer) CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrder not implemented")
}

func (UnimplementedOrderServiceServer) UpdateOrder(context.Context, *UpdateOrderRequest) (*UpdateOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateOrder not implemented")
}

func (UnimplementedOrderServiceServer) DeleteOrder(context.Context, *DeleteOrderRequest) (*DeleteOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteOrder not implemented")
}

func (UnimplementedOrderServiceServer) StreamOrderUpdates(*StreamOrderUpdatesRequest, OrderUpdatesServerStream) error {
	return status.Error(codes.Unimplemented, "method StreamOrderUpdates not implemented")
}

func (UnimplementedOrderServiceServer) mustEmbedUnimplementedOrderServiceServer() {}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

type OrderUpdatesServerStream interface {
	Send(*StreamOrderUpdatesResponse) error
	grpc.ServerStream
}

type orderUpdatesServerStream struct {
	grpc.ServerStream
}

func (x *orderUpdatesServerStream) Send(m *StreamOrderUpdatesResponse) error {
	return x.ServerStream.SendMsg(m)
}

func unaryHandler[Req any, Resp any](
	method string,
	call func(OrderServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamOrderUpdatesHandler(srv any, stream grpc.ServerStream) error {
	m := new(StreamOrderUpdatesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(OrderServiceServer).StreamOrderUpdates(m, &orderUpdatesServerStream{ServerStream: stream})
}

var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOrder",
			Handler:    unaryHandler(GetOrderMethod, OrderServiceServer.GetOrder),
		},
		{
			MethodName: "ListOrders",
			Handler:    unaryHandler(ListOrdersMethod, OrderServiceServer.ListOrders),
		},
		{
			MethodName: "CreateOrder",
			Handler:    unaryHandler(CreateOrderMethod, OrderServiceServer.CreateOrder),
		},
		{
			MethodName: "UpdateOrder",
			Handler:    unaryHandler(UpdateOrderMethod, OrderServiceServer.UpdateOrder),
		},
		{
			MethodName: "DeleteOrder",
			Handler:    unaryHandler(DeleteOrderMethod, OrderServiceServer.DeleteOrder),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamOrderUpdates",
			Handler:       streamOrderUpdatesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "order.proto",
}
