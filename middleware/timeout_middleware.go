package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when a call outlives the Timeout middleware.
var ErrTimeout = errors.New("request timed out")

// Timeout bounds each call. The abandoned request stays on the wire; its
// reply, if it ever comes, is dropped by the session.
func Timeout(timeout time.Duration) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, method string, params, reply any) error {
			if timeout <= 0 {
				return next(ctx, method, params, reply)
			}
			tctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			err := next(tctx, method, params, reply)
			if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("%w: %s after %s", ErrTimeout, method, timeout)
			}
			return err
		}
	}
}
