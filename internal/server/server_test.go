package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	pb "gitlab.ozon.dev/pupkingeorgij/order-service/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/grpcserver"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/interceptor"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/storage"
)

type running struct {
	srv   *Server
	store *storage.Store
	conn  *grpc.ClientConn
	errCh chan error
}

func newTestServer(cfg Config) (*Server, *storage.Store) {
	store := storage.New(storage.WithPaceInterval(10 * time.Millisecond))
	logger := zap.NewNop()
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order-service"
	}
	chain := interceptor.NewChain(interceptor.Logging(logger), interceptor.Metrics())
	return New(cfg, grpcserver.NewServer(store, logger), chain, logger), store
}

func startServer(t *testing.T, ctx context.Context, cfg Config) *running {
	t.Helper()
	srv, store := newTestServer(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
	})

	return &running{srv: srv, store: store, conn: conn, errCh: errCh}
}

func waitRun(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestServer_EndToEnd(t *testing.T) {
	r := startServer(t, context.Background(), Config{})
	r.store.SeedDemo()
	client := pb.NewOrderServiceClient(r.conn)
	ctx := context.Background()

	list, err := client.ListOrders(ctx, &pb.ListOrdersRequest{UserId: storage.DemoUserID, Limit: 1, Page: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Orders, 2)

	_, err = client.ListOrders(ctx, &pb.ListOrdersRequest{UserId: "nobody"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	created, err := client.CreateOrder(ctx, &pb.CreateOrderRequest{
		UserId: "user2",
		Order: &pb.Order{
			Status:  pb.OrderStatus_SHIPPED,
			Address: "1 Test Road",
			Items: []*pb.Item{
				{Id: "i1", Name: "Cable", Price: 2.5, Quantity: 4},
				{Id: "i2", Name: "Plug", Price: 1, Quantity: 1},
			},
		},
	})
	require.NoError(t, err)
	id := created.Order.GetId()
	require.NotEmpty(t, id)
	assert.Equal(t, pb.OrderStatus_PENDING, created.Order.Status)
	assert.Equal(t, 11.0, created.Order.Amount)

	got, err := client.GetOrder(ctx, &pb.GetOrderRequest{OrderId: id})
	require.NoError(t, err)
	assert.Equal(t, "1 Test Road", got.Order.Address)
	assert.Len(t, got.Order.Items, 2)

	got.Order.Address = "2 Test Road"
	got.Order.Status = pb.OrderStatus_PROCESSING
	updated, err := client.UpdateOrder(ctx, &pb.UpdateOrderRequest{Order: got.Order})
	require.NoError(t, err)
	assert.Equal(t, "2 Test Road", updated.Order.Address)

	list, err = client.ListOrders(ctx, &pb.ListOrdersRequest{UserId: "user2"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, pb.OrderStatus_PROCESSING, list.Orders[0].Status)

	deleted, err := client.DeleteOrder(ctx, &pb.DeleteOrderRequest{OrderId: id})
	require.NoError(t, err)
	assert.True(t, deleted.Success)

	_, err = client.GetOrder(ctx, &pb.GetOrderRequest{OrderId: id})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.DeleteOrder(ctx, &pb.DeleteOrderRequest{OrderId: id})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

// Single-field requests share their encoding with the well-known wrapper
// types, so a plain protobuf client can call the service without this
// package's message structs.
func TestServer_DefaultCodecClient(t *testing.T) {
	r := startServer(t, context.Background(), Config{})
	ctx := context.Background()

	var missing wrapperspb.StringValue
	err := r.conn.Invoke(ctx, pb.GetOrderMethod, wrapperspb.String("missing-id"), &missing)
	assert.Equal(t, codes.NotFound, status.Code(err))

	created, err := pb.NewOrderServiceClient(r.conn).CreateOrder(ctx, &pb.CreateOrderRequest{
		UserId: "user3",
		Order: &pb.Order{
			Address: "5 Wire Lane",
			Items:   []*pb.Item{{Id: "i1", Name: "Lamp", Price: 12.5, Quantity: 2}},
		},
	})
	require.NoError(t, err)
	id := created.Order.GetId()

	var deleted wrapperspb.BoolValue
	require.NoError(t, r.conn.Invoke(ctx, pb.DeleteOrderMethod, wrapperspb.String(id), &deleted))
	assert.True(t, deleted.GetValue())

	err = r.conn.Invoke(ctx, pb.DeleteOrderMethod, wrapperspb.String(id), &deleted)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_StreamOrderUpdates(t *testing.T) {
	r := startServer(t, context.Background(), Config{})
	client := pb.NewOrderServiceClient(r.conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := client.CreateOrder(ctx, &pb.CreateOrderRequest{UserId: "user1", Order: &pb.Order{}})
	require.NoError(t, err)

	stream, err := client.StreamOrderUpdates(ctx, &pb.StreamOrderUpdatesRequest{OrderId: created.Order.Id})
	require.NoError(t, err)

	var got []*pb.StreamOrderUpdatesResponse
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, msg)
	}

	require.Len(t, got, 4)
	assert.Equal(t, pb.UpdateType_CREATED, got[0].UpdateType)
	assert.Equal(t, pb.OrderStatus_PENDING, got[0].Order.Status)
	want := []pb.OrderStatus{pb.OrderStatus_PROCESSING, pb.OrderStatus_SHIPPED, pb.OrderStatus_DELIVERED}
	for i, st := range want {
		assert.Equal(t, pb.UpdateType_STATUS_CHANGED, got[i+1].UpdateType)
		assert.Equal(t, st, got[i+1].Order.Status)
		assert.NotZero(t, got[i+1].Timestamp)
	}

	stream, err = client.StreamOrderUpdates(ctx, &pb.StreamOrderUpdatesRequest{OrderId: "missing"})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.NotFound, status.Code(err))

	stream, err = client.StreamOrderUpdates(ctx, &pb.StreamOrderUpdatesRequest{})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_HealthService(t *testing.T) {
	r := startServer(t, context.Background(), Config{})
	health := healthpb.NewHealthClient(r.conn)

	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestServer_AdminEndpoints(t *testing.T) {
	r := startServer(t, context.Background(), Config{AdminAddr: "127.0.0.1:0"})
	require.NotEmpty(t, r.srv.AdminAddr())
	base := "http://" + r.srv.AdminAddr()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, healthResponse{Status: "SERVING", Service: "order-service", State: "RUNNING"}, body)

	metricsResp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	raw, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "orderservice_")
}

func TestServer_Lifecycle(t *testing.T) {
	srv, _ := newTestServer(Config{})
	assert.Equal(t, StateCreated, srv.State())
	assert.Empty(t, srv.Addr())

	// Stop before Run is a no-op.
	srv.Stop()
	assert.Equal(t, StateCreated, srv.State())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(context.Background()) }()
	<-srv.Ready()
	assert.Equal(t, StateRunning, srv.State())

	assert.ErrorIs(t, srv.Run(context.Background()), ErrAlreadyRunning)

	srv.Stop()
	srv.Stop()
	assert.Equal(t, StateStopped, srv.State())
	require.NoError(t, waitRun(t, errCh))

	assert.ErrorIs(t, srv.Run(context.Background()), ErrStopped)
}

func TestServer_ConcurrentStop(t *testing.T) {
	srv, _ := newTestServer(Config{})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(context.Background()) }()
	<-srv.Ready()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			srv.Stop()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, StateStopped, srv.State())
	require.NoError(t, waitRun(t, errCh))
}

func TestServer_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := startServer(t, ctx, Config{})

	cancel()

	require.NoError(t, waitRun(t, r.errCh))
	assert.Equal(t, StateStopped, r.srv.State())
	select {
	case <-r.srv.Done():
	default:
		t.Fatal("Done is not closed after Run returned")
	}
}

func TestServer_BindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv, _ := newTestServer(Config{Addr: taken.Addr().String()})
	err = srv.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateCreated, srv.State())
	select {
	case <-srv.Ready():
		t.Fatal("Ready closed after a bind failure")
	default:
	}
}

func TestServer_StopInterruptsLongStream(t *testing.T) {
	store := storage.New(storage.WithPaceInterval(time.Hour))
	logger := zap.NewNop()
	srv := New(Config{Addr: "127.0.0.1:0", ShutdownTimeout: 50 * time.Millisecond},
		grpcserver.NewServer(store, logger), nil, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(context.Background()) }()
	<-srv.Ready()

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := pb.NewOrderServiceClient(conn)

	created, err := client.CreateOrder(context.Background(), &pb.CreateOrderRequest{UserId: "user1", Order: &pb.Order{}})
	require.NoError(t, err)
	stream, err := client.StreamOrderUpdates(context.Background(), &pb.StreamOrderUpdatesRequest{OrderId: created.Order.Id})
	require.NoError(t, err)
	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, pb.UpdateType_CREATED, first.UpdateType)

	start := time.Now()
	srv.Stop()
	assert.Less(t, time.Since(start), 5*time.Second)
	require.NoError(t, waitRun(t, errCh))

	_, err = stream.Recv()
	assert.Error(t, err)
}
