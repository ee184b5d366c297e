package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"light-rpc/message"
	"light-rpc/protocol"
)

var errFakeClosed = errors.New("fake conn closed")

// fakeConn is an in-memory Conn. The test plays the peer through in (frames
// the session will read) and out (frames the session wrote).
type fakeConn struct {
	in     chan Frame
	out    chan Frame
	closed chan struct{}
	once   sync.Once

	mu       sync.Mutex
	writeErr error
	pings    int
	pingErr  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan Frame, 16),
		out:    make(chan Frame, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadFrame(ctx context.Context) (Frame, error) {
	select {
	case f, ok := <-c.in:
		if !ok {
			return Frame{}, io.EOF
		}
		return f, nil
	case <-c.closed:
		return Frame{}, errFakeClosed
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

func (c *fakeConn) WriteFrame(ctx context.Context, f Frame) error {
	c.mu.Lock()
	err := c.writeErr
	c.writeErr = nil
	c.mu.Unlock()
	if err != nil {
		return err
	}

	select {
	case c.out <- f:
		return nil
	case <-c.closed:
		return errFakeClosed
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) failNextWrite(err error) {
	c.mu.Lock()
	c.writeErr = err
	c.mu.Unlock()
}

// pingingConn adds Pinger to fakeConn.
type pingingConn struct {
	*fakeConn
}

func (c pingingConn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pings++
	return c.pingErr
}

// stalledConn never finishes a write until the session cancels it.
type stalledConn struct {
	*fakeConn
	writing chan struct{}
}

func newStalledConn() stalledConn {
	return stalledConn{fakeConn: newFakeConn(), writing: make(chan struct{}, 1)}
}

func (c stalledConn) WriteFrame(ctx context.Context, f Frame) error {
	select {
	case c.writing <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c stalledConn) waitWriting(t *testing.T) {
	t.Helper()
	select {
	case <-c.writing:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write to start")
	}
}

// recvRequest waits for the session to write one request.
func (c *fakeConn) recvRequest(t *testing.T) *message.Request {
	t.Helper()
	select {
	case f := <-c.out:
		require.Equal(t, protocol.KindText, f.Kind)
		var req message.Request
		require.NoError(t, json.Unmarshal(f.Data, &req))
		return &req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for request")
		return nil
	}
}

func (c *fakeConn) send(raw string) {
	c.in <- TextFrame([]byte(raw))
}

func (c *fakeConn) reply(id uint64, result string) {
	c.send(`{"jsonrpc":"2.0","id":` + itoa(id) + `,"result":` + result + `}`)
}

// hangup makes the next read return io.EOF.
func (c *fakeConn) hangup() {
	close(c.in)
}

func itoa(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

type callResult struct {
	result json.RawMessage
	err    error
}

// goCall runs Call in a goroutine and returns where its outcome lands.
func goCall(ct *ClientTransport, method string, params any) <-chan callResult {
	ch := make(chan callResult, 1)
	go func() {
		r, err := ct.Call(context.Background(), method, params)
		ch <- callResult{r, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan callResult) callResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for call to return")
		return callResult{}
	}
}

func waitDone(t *testing.T, ct *ClientTransport) {
	t.Helper()
	select {
	case <-ct.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session to end")
	}
}
