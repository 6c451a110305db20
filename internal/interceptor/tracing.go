package interceptor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/status"
)

type tracingInterceptor struct {
	tracer trace.Tracer
	info   CallInfo
	span   trace.Span
}

// Tracing opens a server span per call named after the full method.
func Tracing(tracer trace.Tracer) Factory {
	return func(info CallInfo) Interceptor {
		return &tracingInterceptor{tracer: tracer, info: info}
	}
}

func (i *tracingInterceptor) Before(ctx context.Context) (context.Context, error) {
	ctx, i.span = i.tracer.Start(ctx, i.info.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithTimestamp(i.info.Start),
		trace.WithAttributes(
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.method", i.info.Method),
			attribute.Bool("rpc.stream", i.info.Stream),
		),
	)
	return ctx, nil
}

func (i *tracingInterceptor) After(_ context.Context, err error) {
	code := status.Code(err)
	i.span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
	if err != nil {
		i.span.RecordError(err)
		i.span.SetStatus(otelcodes.Error, err.Error())
	}
	i.span.End()
}
