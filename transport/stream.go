package transport

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"

	"light-rpc/protocol"
)

// StreamConn carries frames over a byte stream using the protocol frame
// format. Writes are serialized so the pump and any other writer can share
// the stream without interleaving frames.
type StreamConn struct {
	rwc     io.ReadWriteCloser
	r       *bufio.Reader
	maxBody int

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// NewStreamConn wraps rwc. maxBody <= 0 selects protocol.DefaultMaxBody.
func NewStreamConn(rwc io.ReadWriteCloser, maxBody int) *StreamConn {
	return &StreamConn{
		rwc:     rwc,
		r:       bufio.NewReader(rwc),
		maxBody: maxBody,
		closed:  make(chan struct{}),
	}
}

// ReadFrame blocks until a frame arrives. ctx is not consulted while
// blocked; Close releases the read.
func (c *StreamConn) ReadFrame(ctx context.Context) (Frame, error) {
	kind, body, err := protocol.Decode(c.r, c.maxBody)
	if err != nil {
		if c.isClosed() {
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}
	return Frame{Kind: kind, Data: body}, nil
}

func (c *StreamConn) WriteFrame(ctx context.Context, f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if nc, ok := c.rwc.(net.Conn); ok {
		// A zero deadline clears any earlier one.
		deadline, _ := ctx.Deadline()
		if err := nc.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	return protocol.Encode(c.rwc, f.Kind, f.Data)
}

func (c *StreamConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.rwc.Close()
	})
	return c.closeErr
}

func (c *StreamConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

var _ Conn = (*StreamConn)(nil)
var _ Conn = (*WebSocketConn)(nil)
