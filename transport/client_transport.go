// Package transport implements the client session: one open connection
// shared by any number of concurrent callers.
//
// Each call gets a unique id and a pending entry; a single pump owns the
// connection, writing queued requests and routing every reply to the caller
// waiting on its id. Replies may come back in any order.
//
//	goroutine-1 ──Call(id=0)──┐
//	goroutine-2 ──Call(id=1)──┼──→ sendq ──→ writeLoop ──→ conn ──→ peer
//	goroutine-3 ──Call(id=2)──┘
//
//	readLoop:  ←── reply(id=1) → pending[1] → goroutine-1 wakes up
//	           ←── event (no id) → broadcast handler
//
// When the connection fails, or the peer sends something the session cannot
// understand, the pump stops and every caller still waiting receives
// ErrConnectionClosed.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"light-rpc/codec"
	"light-rpc/message"
	"light-rpc/protocol"
)

var nullResult = json.RawMessage("null")

type outbound struct {
	id   uint64
	data []byte
}

// ClientTransport is one session over one connection.
type ClientTransport struct {
	id      string
	conn    Conn
	codec   codec.Codec
	logger  *zap.Logger
	ids     sequence
	pending *pendingTable
	sendq   chan outbound

	onBroadcast BroadcastHandler
	heartbeat   time.Duration

	cancel  context.CancelFunc
	closing atomic.Bool
	done    chan struct{}
	err     error // written once before done is closed
}

// NewClientTransport starts a session on conn. The session owns conn from
// here on and closes it when the session ends.
func NewClientTransport(conn Conn, opts ...Option) *ClientTransport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	t := &ClientTransport{
		id:          id,
		conn:        conn,
		codec:       o.codec,
		logger:      o.logger.With(zap.String("session", id)),
		pending:     newPendingTable(),
		sendq:       make(chan outbound, o.sendQueue),
		onBroadcast: o.onBroadcast,
		heartbeat:   o.heartbeat,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

// ID returns the session id used in log fields.
func (t *ClientTransport) ID() string {
	return t.id
}

// Call sends method with params and waits for the matching reply.
//
// The result is the raw result payload (JSON null when the peer sent
// none). A peer error is returned as *RemoteError. If the session ends
// first the error matches ErrConnectionClosed; if the session was already
// dead it matches ErrSendFailed. When ctx ends first the pending entry is
// dropped and ctx.Err() is returned; a reply arriving later is ignored.
func (t *ClientTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := t.ids.next()

	handle, err := t.pending.register(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	data, err := t.codec.EncodeRequest(method, params, &id)
	if err != nil {
		t.pending.remove(id)
		return nil, err
	}

	if err := t.enqueue(ctx, outbound{id: id, data: data}); err != nil {
		t.pending.remove(id)
		return nil, err
	}

	select {
	case c := <-handle:
		return c.result, c.err
	case <-ctx.Done():
		if t.pending.remove(id) {
			return nil, ctx.Err()
		}
		// Resolved concurrently; the value is already buffered.
		c := <-handle
		return c.result, c.err
	}
}

func (t *ClientTransport) enqueue(ctx context.Context, out outbound) error {
	select {
	case <-t.done:
		return fmt.Errorf("%w: %w", ErrSendFailed, &ClosedError{Reason: t.err})
	default:
	}

	select {
	case t.sendq <- out:
		return nil
	case <-t.done:
		return fmt.Errorf("%w: %w", ErrSendFailed, &ClosedError{Reason: t.err})
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the session and waits for the pump to stop. Callers still
// waiting receive ErrConnectionClosed with reason ErrClientClosed.
func (t *ClientTransport) Close() error {
	t.closing.Store(true)
	t.cancel()
	<-t.done
	return nil
}

// Done is closed when the session has ended.
func (t *ClientTransport) Done() <-chan struct{} {
	return t.done
}

// Err returns why the session ended: io.EOF for a clean close by the peer,
// ErrClientClosed after Close, or the fatal error. It is nil while the
// session is alive.
func (t *ClientTransport) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Pending returns the number of calls waiting for a reply.
func (t *ClientTransport) Pending() int {
	return t.pending.len()
}

// run is the pump. The read and write loops, and the optional heartbeat,
// run under one errgroup; each returns only with a non-nil error, so the
// first to stop cancels the rest. The closer then closes conn, which
// releases a read blocked in a transport that ignores ctx.
func (t *ClientTransport) run(ctx context.Context) {
	t.logger.Debug("session started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.readLoop(gctx) })
	g.Go(func() error { return t.writeLoop(gctx) })
	if p, ok := t.conn.(Pinger); ok && t.heartbeat > 0 {
		g.Go(func() error { return t.heartbeatLoop(gctx, p) })
	}
	g.Go(func() error {
		<-gctx.Done()
		if err := t.conn.Close(); err != nil {
			t.logger.Debug("close connection", zap.Error(err))
		}
		return nil
	})

	t.shutdown(g.Wait())
}

func (t *ClientTransport) shutdown(err error) {
	reason := err
	if t.closing.Load() {
		reason = ErrClientClosed
	}
	t.err = reason
	close(t.done)

	drained := t.pending.drainAll(reason)

	fields := []zap.Field{zap.Int("released", len(drained))}
	switch {
	case errors.Is(reason, io.EOF), errors.Is(reason, ErrClientClosed):
		t.logger.Debug("session ended", append(fields, zap.String("reason", reason.Error()))...)
	default:
		t.logger.Warn("session ended", append(fields, zap.Error(reason))...)
	}
}

// readLoop reads frames until the connection ends or misbehaves.
func (t *ClientTransport) readLoop(ctx context.Context) error {
	for {
		f, err := t.conn.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TransportError{Op: "read", Err: err}
		}

		if f.Kind != protocol.KindText {
			return fmt.Errorf("%w: unexpected %s frame", ErrProtocolViolation, f.Kind)
		}

		resp, err := t.codec.DecodeResponse(f.Data)
		if err != nil {
			return err
		}
		t.dispatch(resp)
	}
}

// dispatch routes one decoded envelope. An error payload wins over a
// result payload; a reply with neither resolves to JSON null.
func (t *ClientTransport) dispatch(resp *message.Response) {
	if resp.IsBroadcast() {
		t.logger.Debug("broadcast received", zap.ByteString("result", resp.Result))
		if t.onBroadcast != nil {
			t.onBroadcast(resp)
		}
		return
	}

	id := *resp.ID
	var c completion
	switch {
	case resp.HasError():
		c.err = newRemoteError(resp.Error)
	case resp.HasResult():
		c.result = resp.Result
	default:
		c.result = nullResult
	}

	if !t.pending.resolve(id, c) {
		t.logger.Debug("dropping reply for unknown id", zap.Uint64("id", id))
	}
}

// writeLoop drains the send queue. A failed write is reported to the one
// caller whose frame it was; reading carries on.
func (t *ClientTransport) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out := <-t.sendq:
			if err := t.conn.WriteFrame(ctx, TextFrame(out.data)); err != nil {
				// Session is going down; drainAll releases this caller with the real reason.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				t.logger.Warn("write failed", zap.Uint64("id", out.id), zap.Error(err))
				t.pending.resolve(out.id, completion{err: &TransportError{Op: "write", Err: err}})
			}
		}
	}
}

func (t *ClientTransport) heartbeatLoop(ctx context.Context, p Pinger) error {
	ticker := time.NewTicker(t.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, t.heartbeat)
			err := p.Ping(pctx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &TransportError{Op: "ping", Err: err}
			}
		}
	}
}
