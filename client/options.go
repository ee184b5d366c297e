package client

import (
	"go.uber.org/zap"

	"light-rpc/message"
	"light-rpc/middleware"
	"light-rpc/transport"
)

type Option func(*options)

type options struct {
	logger      *zap.Logger
	session     []transport.Option
	middlewares []middleware.Middleware
	dial        transport.DialOptions
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger of the client and its session.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMiddleware appends call middlewares. The first one runs outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mws...) }
}

// WithBroadcastHandler receives notifications the peer pushes without an id.
func WithBroadcastHandler(h func(*message.Response)) Option {
	return WithSessionOptions(transport.WithBroadcastHandler(h))
}

// WithSessionOptions passes options through to the underlying session.
func WithSessionOptions(opts ...transport.Option) Option {
	return func(o *options) { o.session = append(o.session, opts...) }
}

// WithDialOptions configures connection establishment for Dial.
func WithDialOptions(d transport.DialOptions) Option {
	return func(o *options) { o.dial = d }
}
