// Package middleware wraps client calls with cross-cutting behaviour.
//
// Middlewares compose in the onion model:
//
//	Chain(A, B, C)(invoke) → A(B(C(invoke)))
//	A.before → B.before → C.before → invoke → C.after → B.after → A.after
package middleware

import "context"

// Invoker performs one call. reply may be nil when the result is not needed.
type Invoker func(ctx context.Context, method string, params, reply any) error

// Middleware decorates an Invoker.
type Middleware func(next Invoker) Invoker

// Chain composes middlewares so the first one listed runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next Invoker) Invoker {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
