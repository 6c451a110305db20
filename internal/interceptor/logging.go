package interceptor

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/status"
)

type loggingInterceptor struct {
	logger *zap.Logger
	info   CallInfo
}

// Logging records the method name of every call and how it ended.
func Logging(logger *zap.Logger) Factory {
	return func(info CallInfo) Interceptor {
		return &loggingInterceptor{logger: logger, info: info}
	}
}

func (i *loggingInterceptor) Before(ctx context.Context) (context.Context, error) {
	if i.info.Method == "" {
		i.logger.Warn("Unknown method called")
		return ctx, nil
	}
	i.logger.Info("Method called", zap.String("method", i.info.Method), zap.Bool("stream", i.info.Stream))
	return ctx, nil
}

func (i *loggingInterceptor) After(_ context.Context, err error) {
	fields := []zap.Field{
		zap.String("method", i.info.Method),
		zap.Stringer("code", status.Code(err)),
		zap.Duration("duration", time.Since(i.info.Start)),
	}
	if err != nil {
		i.logger.Debug("Call failed", append(fields, zap.Error(err))...)
		return
	}
	i.logger.Debug("Call finished", fields...)
}
