package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "gitlab.ozon.dev/pupkingeorgij/order-service/internal/api"
	mock_grpcserver "gitlab.ozon.dev/pupkingeorgij/order-service/internal/grpcserver/mocks"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/order"
)

func sampleOrder() order.Order {
	return order.Order{
		ID:        "order-1",
		Status:    order.Shipped,
		Amount:    20,
		Address:   "1 Test Lane",
		CreatedAt: 100,
		UpdatedAt: 200,
		Items:     []order.Item{{ID: "i-1", Name: "Lamp", Price: 10, Quantity: 2}},
	}
}

func TestServer_GetOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_grpcserver.NewMockOrderStore(ctrl)
	server := NewServer(mockStore, zap.NewNop())

	tests := []struct {
		name         string
		setupMocks   func()
		expectedCode codes.Code
	}{
		{
			name: "found",
			setupMocks: func() {
				mockStore.EXPECT().GetOrder(gomock.Any(), "order-1").Return(sampleOrder(), nil)
			},
			expectedCode: codes.OK,
		},
		{
			name: "not found",
			setupMocks: func() {
				mockStore.EXPECT().GetOrder(gomock.Any(), "order-1").
					Return(order.Order{}, fmt.Errorf("order %q: %w", "order-1", order.ErrNotFound))
			},
			expectedCode: codes.NotFound,
		},
		{
			name: "unexpected failure",
			setupMocks: func() {
				mockStore.EXPECT().GetOrder(gomock.Any(), "order-1").Return(order.Order{}, errors.New("boom"))
			},
			expectedCode: codes.Internal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			resp, err := server.GetOrder(context.Background(), &pb.GetOrderRequest{OrderId: "order-1"})

			assert.Equal(t, tc.expectedCode, status.Code(err))
			if tc.expectedCode == codes.OK {
				require.NotNil(t, resp)
				assert.Equal(t, "order-1", resp.Order.Id)
				assert.Equal(t, pb.OrderStatus_SHIPPED, resp.Order.Status)
				require.Len(t, resp.Order.Items, 1)
				assert.Equal(t, "Lamp", resp.Order.Items[0].Name)
			}
		})
	}
}

func TestServer_ListOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_grpcserver.NewMockOrderStore(ctrl)
	server := NewServer(mockStore, zap.NewNop())

	t.Run("passes hints through and reports total", func(t *testing.T) {
		filters := map[string]string{"status": "PENDING"}
		mockStore.EXPECT().
			ListOrders(gomock.Any(), "user1", order.ListQuery{Limit: 1, Page: 3, Filters: filters}).
			Return([]order.Order{sampleOrder(), sampleOrder()}, 2, nil)

		resp, err := server.ListOrders(context.Background(), &pb.ListOrdersRequest{
			UserId:  "user1",
			Limit:   1,
			Page:    3,
			Filters: filters,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(2), resp.Total)
		assert.Len(t, resp.Orders, 2)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockStore.EXPECT().ListOrders(gomock.Any(), "ghost", gomock.Any()).
			Return(nil, 0, order.ErrNotFound)

		_, err := server.ListOrders(context.Background(), &pb.ListOrdersRequest{UserId: "ghost"})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestServer_CreateOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_grpcserver.NewMockOrderStore(ctrl)
	server := NewServer(mockStore, zap.NewNop())

	t.Run("converts the request order", func(t *testing.T) {
		mockStore.EXPECT().
			CreateOrder(gomock.Any(), "user1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, o order.Order) (order.Order, error) {
				assert.Equal(t, "2 Side Road", o.Address)
				require.Len(t, o.Items, 1)
				assert.Equal(t, int32(3), o.Items[0].Quantity)
				o.ID = "new-id"
				o.Amount = 4.5
				return o, nil
			})

		resp, err := server.CreateOrder(context.Background(), &pb.CreateOrderRequest{
			UserId: "user1",
			Order: &pb.Order{
				Address: "2 Side Road",
				Items:   []*pb.Item{{Name: "Cup", Price: 1.5, Quantity: 3}, nil},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "new-id", resp.Order.Id)
		assert.Equal(t, 4.5, resp.Order.Amount)
	})

	t.Run("missing order body creates an empty order", func(t *testing.T) {
		mockStore.EXPECT().
			CreateOrder(gomock.Any(), "user1", order.Order{}).
			Return(order.Order{ID: "empty"}, nil)

		resp, err := server.CreateOrder(context.Background(), &pb.CreateOrderRequest{UserId: "user1"})
		require.NoError(t, err)
		assert.Equal(t, "empty", resp.Order.Id)
	})
}

func TestServer_UpdateOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_grpcserver.NewMockOrderStore(ctrl)
	server := NewServer(mockStore, zap.NewNop())

	t.Run("replaces", func(t *testing.T) {
		mockStore.EXPECT().UpdateOrder(gomock.Any(), sampleOrder()).Return(sampleOrder(), nil)

		resp, err := server.UpdateOrder(context.Background(), &pb.UpdateOrderRequest{Order: toProtoOrder(sampleOrder())})
		require.NoError(t, err)
		assert.Equal(t, toProtoOrder(sampleOrder()), resp.Order)
	})

	t.Run("not found", func(t *testing.T) {
		mockStore.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).Return(order.Order{}, order.ErrNotFound)

		_, err := server.UpdateOrder(context.Background(), &pb.UpdateOrderRequest{})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestServer_DeleteOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_grpcserver.NewMockOrderStore(ctrl)
	server := NewServer(mockStore, zap.NewNop())

	mockStore.EXPECT().DeleteOrder(gomock.Any(), "order-1").Return(nil)
	resp, err := server.DeleteOrder(context.Background(), &pb.DeleteOrderRequest{OrderId: "order-1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	mockStore.EXPECT().DeleteOrder(gomock.Any(), "order-1").Return(order.ErrNotFound)
	_, err = server.DeleteOrder(context.Background(), &pb.DeleteOrderRequest{OrderId: "order-1"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

type fakeUpdatesStream struct {
	grpc.ServerStream
	ctx     context.Context
	sent    []*pb.StreamOrderUpdatesResponse
	sendErr error
}

func (f *fakeUpdatesStream) Context() context.Context {
	return f.ctx
}

func (f *fakeUpdatesStream) Send(m *pb.StreamOrderUpdatesResponse) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, m)
	return nil
}

func TestServer_StreamOrderUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_grpcserver.NewMockOrderStore(ctrl)
	server := NewServer(mockStore, zap.NewNop())
	at := time.Unix(1700000000, 0)

	t.Run("forwards events", func(t *testing.T) {
		stream := &fakeUpdatesStream{ctx: context.Background()}
		mockStore.EXPECT().
			StreamOrderUpdates(stream.ctx, "order-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, emit func(order.Event) error) error {
				o := sampleOrder()
				require.NoError(t, emit(order.Event{Kind: order.EventCreated, Order: o, At: at}))
				o.Status = order.Delivered
				require.NoError(t, emit(order.Event{Kind: order.EventStatusChanged, Order: o, At: at}))
				return nil
			})

		err := server.StreamOrderUpdates(&pb.StreamOrderUpdatesRequest{OrderId: "order-1"}, stream)
		require.NoError(t, err)
		require.Len(t, stream.sent, 2)
		assert.Equal(t, pb.UpdateType_CREATED, stream.sent[0].UpdateType)
		assert.Equal(t, pb.UpdateType_STATUS_CHANGED, stream.sent[1].UpdateType)
		assert.Equal(t, pb.OrderStatus_DELIVERED, stream.sent[1].Order.Status)
		assert.Equal(t, at.Unix(), stream.sent[1].Timestamp)
	})

	tests := []struct {
		name         string
		storeErr     error
		expectedCode codes.Code
	}{
		{"empty id", fmt.Errorf("order id is required: %w", order.ErrInvalidArgument), codes.InvalidArgument},
		{"unknown order", order.ErrNotFound, codes.NotFound},
		{"consumer gone", order.ErrConsumerGone, codes.Canceled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stream := &fakeUpdatesStream{ctx: context.Background()}
			mockStore.EXPECT().StreamOrderUpdates(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.storeErr)

			err := server.StreamOrderUpdates(&pb.StreamOrderUpdatesRequest{}, stream)
			assert.Equal(t, tc.expectedCode, status.Code(err))
		})
	}
}
