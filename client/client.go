// Package client is the typed face of a session: calls decode into Go
// values and pass through a middleware chain before reaching the wire.
//
//	Call(ctx, method, params, &reply)
//	    │
//	    ▼
//	middleware chain (logging, tracing, retry, rate limit, timeout)
//	    │
//	    ▼
//	transport.ClientTransport.Call ──► raw result ──► json.Unmarshal(reply)
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"light-rpc/middleware"
	"light-rpc/transport"
)

// Client issues JSON-RPC calls over one session. It is safe for concurrent
// use.
type Client struct {
	session *transport.ClientTransport
	invoke  middleware.Invoker
	logger  *zap.Logger
}

// New starts a session on an established connection.
func New(conn transport.Conn, opts ...Option) *Client {
	o := buildOptions(opts)

	sessionOpts := append([]transport.Option{transport.WithLogger(o.logger)}, o.session...)
	c := &Client{
		session: transport.NewClientTransport(conn, sessionOpts...),
		logger:  o.logger,
	}
	c.invoke = middleware.Chain(o.middlewares...)(c.call)
	return c
}

// Dial connects to url and starts a session on it.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	return DialResolver(ctx, StaticResolver(url), opts...)
}

// DialResolver resolves the endpoint, connects, and starts a session.
func DialResolver(ctx context.Context, r Resolver, opts ...Option) (*Client, error) {
	url, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	conn, err := transport.Dial(ctx, url, o.dial)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("connected", zap.String("remote", url))

	return New(conn, append(opts[:len(opts):len(opts)], WithLogger(o.logger.With(zap.String("remote", url))))...), nil
}

// Call invokes method with params and decodes the result into reply,
// which must be a pointer or nil to discard the result. It blocks until
// the reply arrives, the session ends, or ctx is done.
func (c *Client) Call(ctx context.Context, method string, params, reply any) error {
	return c.invoke(ctx, method, params, reply)
}

func (c *Client) call(ctx context.Context, method string, params, reply any) error {
	raw, err := c.session.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	if err := json.Unmarshal(raw, reply); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecodeMismatch, method, err)
	}
	return nil
}

// Close ends the session and releases waiting callers with
// ErrConnectionClosed.
func (c *Client) Close() error {
	return c.session.Close()
}

// Done is closed when the session has ended.
func (c *Client) Done() <-chan struct{} {
	return c.session.Done()
}

// Err returns why the session ended, or nil while it is running.
func (c *Client) Err() error {
	return c.session.Err()
}

// SessionID identifies the session in logs.
func (c *Client) SessionID() string {
	return c.session.ID()
}
