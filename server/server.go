// Package server is a JSON-RPC 2.0 peer. It backs the simulated Control
// Center and the end-to-end tests of the client.
//
// Request processing:
//
//	accept conn → ServeConn (one goroutine reads frames)
//	  → for each request: go handle (parallel processing)
//	    → DecodeRequest → handler → EncodeResponse → write reply
//
// Replies go out in completion order, not request order; the client
// matches them by id.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"light-rpc/codec"
	"light-rpc/message"
	"light-rpc/protocol"
	"light-rpc/registry"
	"light-rpc/transport"
)

// HandlerFunc answers one request. The returned value is marshalled as
// the result. Returning a *message.Error selects the error code; any other
// error is sent as CodeServerError with its text.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server dispatches requests to registered handlers.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	conns    map[transport.Conn]struct{}

	codec    codec.Codec
	logger   *zap.Logger
	maxFrame int64

	wg        sync.WaitGroup // in-flight requests
	shutdown  atomic.Bool
	ctx       context.Context // cancelled by Shutdown
	cancel    context.CancelFunc
	listeners []net.Listener
	httpSrv   []*http.Server

	registry   registry.Registry
	advertised []advertisement
}

type advertisement struct {
	service string
	addr    string
}

func NewServer(opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		handlers: make(map[string]HandlerFunc),
		conns:    make(map[transport.Conn]struct{}),
		codec:    codec.Default,
		logger:   zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle registers h for method, replacing any previous handler.
func (s *Server) Handle(method string, h HandlerFunc) {
	s.mu.Lock()
	s.handlers[method] = h
	s.mu.Unlock()
}

// Register exposes the RPC-shaped methods of rcvr (e.g. &Lights{}), each
// under its name with a lower-case first letter.
func (s *Server) Register(rcvr any) error {
	svc, err := newService(rcvr)
	if err != nil {
		return err
	}
	for name, m := range svc.method {
		s.Handle(name, svc.handler(m))
	}
	return nil
}

// Methods lists the registered method names.
func (s *Server) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	return names
}

// Advertise publishes addr under service in reg. The entry is removed by
// Shutdown.
func (s *Server) Advertise(ctx context.Context, reg registry.Registry, service string, instance registry.ServiceInstance, ttl int64) error {
	if err := reg.Register(ctx, service, instance, ttl); err != nil {
		return err
	}
	s.mu.Lock()
	s.registry = reg
	s.advertised = append(s.advertised, advertisement{service: service, addr: instance.Addr})
	s.mu.Unlock()
	return nil
}

// ServeHTTP upgrades the request to a WebSocket and serves it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	if err := s.ServeConn(s.ctx, transport.NewWebSocketConn(ws, s.maxFrame)); err != nil {
		s.logger.Debug("connection ended", zap.String("remote", r.RemoteAddr), zap.Error(err))
	}
}

// Serve accepts WebSocket connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	hs := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	s.mu.Lock()
	s.httpSrv = append(s.httpSrv, hs)
	s.mu.Unlock()

	if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeStream accepts raw stream connections carrying protocol frames on
// ln until Shutdown.
func (s *Server) ServeStream(ln net.Listener) error {
	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	for {
		nc, err := ln.Accept()
		if err != nil {
			// Shutdown closes the listener; that Accept error is expected
			if s.shutdown.Load() {
				return nil
			}
			return err
		}
		go func() {
			if err := s.ServeConn(s.ctx, transport.NewStreamConn(nc, int(s.maxFrame))); err != nil {
				s.logger.Debug("connection ended", zap.String("remote", nc.RemoteAddr().String()), zap.Error(err))
			}
		}()
	}
}

// ServeConn reads requests from conn until it closes, answering each in
// its own goroutine. It returns nil when the peer hung up.
func (s *Server) ServeConn(ctx context.Context, conn transport.Conn) error {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		f, err := conn.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || s.shutdown.Load() {
				return nil
			}
			return err
		}
		if f.Kind != protocol.KindText {
			return fmt.Errorf("%w: %s frame", transport.ErrProtocolViolation, f.Kind)
		}
		if s.shutdown.Load() {
			return nil
		}

		s.wg.Add(1)
		go func(data []byte) {
			defer s.wg.Done()
			s.handle(ctx, conn, data)
		}(f.Data)
	}
}

func (s *Server) handle(ctx context.Context, conn transport.Conn, data []byte) {
	req, err := s.codec.DecodeRequest(data)
	if err != nil {
		s.logger.Debug("malformed request", zap.Error(err))
		s.reply(ctx, conn, &message.Response{Error: errorPayload(&message.Error{
			Code:    message.CodeParseError,
			Message: err.Error(),
		})})
		return
	}

	s.mu.RLock()
	h, ok := s.handlers[req.Method]
	s.mu.RUnlock()

	var resp message.Response
	if !ok {
		resp.Error = errorPayload(&message.Error{Code: message.CodeMethodNotFound, Message: "method not found: " + req.Method})
	} else if result, err := h(ctx, req.Params); err != nil {
		resp.Error = errorPayload(err)
	} else if resp.Result, err = codec.MarshalResult(result); err != nil {
		resp.Error = errorPayload(&message.Error{Code: message.CodeInternalError, Message: err.Error()})
	}

	s.logger.Debug("request",
		zap.String("method", req.Method),
		zap.Bool("notification", req.IsNotification()),
		zap.Bool("error", resp.Error != nil))

	if req.IsNotification() {
		return
	}
	resp.ID = req.ID
	s.reply(ctx, conn, &resp)
}

func (s *Server) reply(ctx context.Context, conn transport.Conn, resp *message.Response) {
	out, err := s.codec.EncodeResponse(resp)
	if err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
		return
	}
	if err := conn.WriteFrame(ctx, transport.TextFrame(out)); err != nil {
		s.logger.Debug("write response failed", zap.Error(err))
	}
}

func errorPayload(err error) json.RawMessage {
	var rpcErr *message.Error
	if !errors.As(err, &rpcErr) {
		rpcErr = &message.Error{Code: message.CodeServerError, Message: err.Error()}
	}
	raw, err := json.Marshal(rpcErr)
	if err != nil {
		// Bad Data must not turn the reply into a success.
		raw, _ = json.Marshal(&message.Error{
			Code:    message.CodeInternalError,
			Message: "unencodable error: " + rpcErr.Message,
		})
	}
	return raw
}

// Notify pushes event to every connected client as an id-less envelope.
func (s *Server) Notify(ctx context.Context, event any) error {
	out, err := codec.EncodeNotification(event)
	if err != nil {
		return err
	}

	s.mu.RLock()
	conns := make([]transport.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	var errs []error
	for _, c := range conns {
		if err := c.WriteFrame(ctx, transport.TextFrame(out)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Conns reports the number of connected clients.
func (s *Server) Conns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Shutdown stops the server:
//  1. remove advertised entries from the registry
//  2. stop accepting connections
//  3. wait for in-flight requests, up to timeout
//  4. close every connection
func (s *Server) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	reg, advertised := s.registry, s.advertised
	s.advertised = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, a := range advertised {
		if err := reg.Deregister(ctx, a.service, a.addr); err != nil {
			s.logger.Warn("deregister failed", zap.String("service", a.service), zap.Error(err))
		}
	}

	// set the flag before closing so Accept errors read as intentional
	s.shutdown.Store(true)
	s.mu.Lock()
	for _, ln := range s.listeners {
		ln.Close()
	}
	httpSrv := s.httpSrv
	s.mu.Unlock()
	for _, hs := range httpSrv {
		hs.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("server: timeout waiting for ongoing requests to finish")
	}

	s.mu.RLock()
	conns := make([]transport.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		c.Close()
	}
	s.cancel()
	return err
}
