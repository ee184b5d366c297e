package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when RateLimit rejects a call.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimit rejects calls beyond r per second with bursts up to burst,
// using a token bucket. Rejected calls never reach the connection.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next Invoker) Invoker {
		return func(ctx context.Context, method string, params, reply any) error {
			if !limiter.Allow() {
				return ErrRateLimited
			}
			return next(ctx, method, params, reply)
		}
	}
}
