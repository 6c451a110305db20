// Package interceptor runs per-call hooks around every inbound RPC.
//
// A Chain holds factories. For each call every factory builds a fresh
// Interceptor; their Before hooks run in registration order, then the handler
// runs once, then the After hooks run in reverse order. A Before error aborts
// the call without dispatching it.
package interceptor

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CallInfo is the metadata an interceptor sees for one call.
type CallInfo struct {
	Method string
	Stream bool
	Start  time.Time
}

type Interceptor interface {
	// Before may replace the context passed further down. A non-nil error
	// aborts the call.
	Before(ctx context.Context) (context.Context, error)
	After(ctx context.Context, err error)
}

type Factory func(info CallInfo) Interceptor

// Funcs adapts plain functions to Interceptor. Nil hooks are skipped.
type Funcs struct {
	BeforeFunc func(ctx context.Context) (context.Context, error)
	AfterFunc  func(ctx context.Context, err error)
}

func (f Funcs) Before(ctx context.Context) (context.Context, error) {
	if f.BeforeFunc == nil {
		return ctx, nil
	}
	return f.BeforeFunc(ctx)
}

func (f Funcs) After(ctx context.Context, err error) {
	if f.AfterFunc != nil {
		f.AfterFunc(ctx, err)
	}
}

type Chain struct {
	mu        sync.RWMutex
	factories []Factory
}

func NewChain(factories ...Factory) *Chain {
	return &Chain{factories: factories}
}

func (c *Chain) Use(f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories = append(c.factories, f)
}

func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.factories)
}

func (c *Chain) snapshot() []Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Factory(nil), c.factories...)
}

// run wraps proceed with the chain.
func (c *Chain) run(ctx context.Context, info CallInfo, proceed func(ctx context.Context) error) error {
	factories := c.snapshot()
	entered := make([]Interceptor, 0, len(factories))

	for _, factory := range factories {
		ic := factory(info)
		next, err := ic.Before(ctx)
		if err != nil {
			err = asStatus(err)
			for i := len(entered) - 1; i >= 0; i-- {
				entered[i].After(ctx, err)
			}
			return err
		}
		ctx = next
		entered = append(entered, ic)
	}

	err := proceed(ctx)
	for i := len(entered) - 1; i >= 0; i-- {
		entered[i].After(ctx, err)
	}
	return err
}

func asStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Aborted, err.Error())
}

func (c *Chain) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var resp any
		call := CallInfo{Method: info.FullMethod, Start: time.Now()}
		err := c.run(ctx, call, func(ctx context.Context) error {
			var err error
			resp, err = handler(ctx, req)
			return err
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}

func (c *Chain) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		call := CallInfo{Method: info.FullMethod, Stream: true, Start: time.Now()}
		return c.run(ss.Context(), call, func(ctx context.Context) error {
			return handler(srv, &serverStream{ServerStream: ss, ctx: ctx})
		})
	}
}

// serverStream overrides the stream context with the one the chain built.
type serverStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *serverStream) Context() context.Context {
	return s.ctx
}
