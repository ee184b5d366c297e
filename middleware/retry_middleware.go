package middleware

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Retryable reports whether a failed call may be sent again. The default
// only retries calls that were rejected locally before reaching the wire,
// because a request that was written may already have taken effect.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Retry re-invokes a call up to maxRetries times with exponential backoff
// (baseDelay, 2*baseDelay, ...) while retryable(err) holds. A nil retryable
// selects Retryable.
func Retry(maxRetries int, baseDelay time.Duration, retryable func(error) bool, logger *zap.Logger) Middleware {
	if retryable == nil {
		retryable = Retryable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Invoker) Invoker {
		return func(ctx context.Context, method string, params, reply any) error {
			err := next(ctx, method, params, reply)
			for i := 0; i < maxRetries && err != nil && retryable(err); i++ {
				delay := baseDelay * time.Duration(1<<i)
				logger.Debug("retrying call",
					zap.String("method", method),
					zap.Int("attempt", i+1),
					zap.Duration("delay", delay),
					zap.Error(err))

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
				err = next(ctx, method, params, reply)
			}
			return err
		}
	}
}
