// Package server owns the process lifecycle: it binds the listeners, serves
// the order service and stops it once.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "gitlab.ozon.dev/pupkingeorgij/order-service/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/interceptor"
)

const DefaultShutdownTimeout = 5 * time.Second

var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrStopped        = errors.New("server is stopped")
)

type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("STATE(%d)", int32(s))
	}
}

type Config struct {
	Addr string
	// AdminAddr serves /metrics and /healthz. Empty disables it.
	AdminAddr       string
	ShutdownTimeout time.Duration
	ServiceName     string
}

type Server struct {
	cfg     Config
	service pb.OrderServiceServer
	chain   *interceptor.Chain
	logger  *zap.Logger

	mu         sync.Mutex
	state      State
	grpcServer *grpc.Server
	health     *health.Server
	admin      *http.Server

	listener      net.Listener
	adminListener net.Listener
	addr          net.Addr
	adminAddr     net.Addr

	ready chan struct{}
	done  chan struct{}
}

func New(cfg Config, service pb.OrderServiceServer, chain *interceptor.Chain, logger *zap.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if chain == nil {
		chain = interceptor.NewChain()
	}
	return &Server{
		cfg:     cfg,
		service: service,
		chain:   chain,
		logger:  logger,
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run binds the listeners and serves until Stop is called or ctx is
// cancelled. A bind failure is returned before anything is served.
func (s *Server) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}

	s.logger.Info("Server started",
		zap.String("addr", s.Addr()),
		zap.String("admin_addr", s.AdminAddr()))

	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	if s.admin != nil {
		g.Go(func() error {
			if err := s.admin.Serve(s.adminListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin serve: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutdown requested", zap.Error(ctx.Err()))
		case <-gctx.Done():
		case <-s.done:
			return nil
		}
		s.Stop()
		return nil
	})

	err := g.Wait()
	s.Stop()
	if err != nil {
		s.logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}

	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	var adminLis net.Listener
	if s.cfg.AdminAddr != "" {
		adminLis, err = net.Listen("tcp", s.cfg.AdminAddr)
		if err != nil {
			_ = lis.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.AdminAddr, err)
		}
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.chain.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(s.chain.StreamServerInterceptor()),
	)
	pb.RegisterOrderServiceServer(s.grpcServer, s.service)

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.listener = lis
	s.addr = lis.Addr()
	if adminLis != nil {
		s.adminListener = adminLis
		s.adminAddr = adminLis.Addr()
		s.admin = &http.Server{
			Handler:           s.adminRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	s.state = StateRunning
	close(s.ready)
	return nil
}

// Stop shuts the server down gracefully, forcing it after ShutdownTimeout.
// It is safe to call any number of times and from any goroutine; calls made
// while a stop is in progress wait for it. Stop before Run does nothing.
func (s *Server) Stop() {
	s.mu.Lock()
	switch s.state {
	case StateCreated:
		s.mu.Unlock()
		return
	case StateStopped:
		s.mu.Unlock()
		<-s.done
		return
	}
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info("Stopping server", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(s.cfg.ShutdownTimeout)
	select {
	case <-stopped:
		timer.Stop()
	case <-timer.C:
		s.logger.Warn("Graceful stop timed out, closing open calls")
		s.grpcServer.Stop()
		<-stopped
	}

	if s.admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		if err := s.admin.Shutdown(ctx); err != nil {
			s.logger.Error("Admin server shutdown failed", zap.Error(err))
		}
		cancel()
	}

	close(s.done)
}

// Ready is closed once the listeners are bound and the service is registered.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed once Stop has finished.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr is the bound gRPC address, empty before Run.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

func (s *Server) AdminAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adminAddr == nil {
		return ""
	}
	return s.adminAddr.String()
}
