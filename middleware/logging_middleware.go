package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logging logs every call with its duration, at debug level on success and
// warn level on failure.
func Logging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Invoker) Invoker {
		return func(ctx context.Context, method string, params, reply any) error {
			start := time.Now()
			err := next(ctx, method, params, reply)
			fields := []zap.Field{zap.String("method", method), zap.Duration("duration", time.Since(start))}
			if err != nil {
				logger.Warn("call failed", append(fields, zap.Error(err))...)
				return err
			}
			logger.Debug("call", fields...)
			return nil
		}
	}
}
