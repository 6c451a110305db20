package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc/status"

	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/metrics"
)

type metricsInterceptor struct {
	info CallInfo
}

// Metrics counts calls by method and result code and observes latency.
func Metrics() Factory {
	return func(info CallInfo) Interceptor {
		return &metricsInterceptor{info: info}
	}
}

func (i *metricsInterceptor) Before(ctx context.Context) (context.Context, error) {
	metrics.RPCsInFlight.Inc()
	return ctx, nil
}

func (i *metricsInterceptor) After(_ context.Context, err error) {
	metrics.RPCsInFlight.Dec()
	metrics.RPCsTotal.WithLabelValues(i.info.Method, status.Code(err).String()).Inc()
	metrics.RPCDuration.WithLabelValues(i.info.Method).Observe(time.Since(i.info.Start).Seconds())
}
