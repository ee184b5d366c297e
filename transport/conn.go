package transport

import (
	"context"

	"light-rpc/protocol"
)

// Frame is one message read from or written to a Conn.
type Frame struct {
	Kind protocol.Kind
	Data []byte
}

// TextFrame wraps data as a text frame.
func TextFrame(data []byte) Frame {
	return Frame{Kind: protocol.KindText, Data: data}
}

// Conn is a duplex, message-oriented connection that is already open.
//
// ReadFrame returns io.EOF when the peer closes the connection cleanly.
// ReadFrame is called from a single goroutine; WriteFrame must be safe to
// call concurrently with ReadFrame. Close unblocks a pending ReadFrame.
type Conn interface {
	ReadFrame(ctx context.Context) (Frame, error)
	WriteFrame(ctx context.Context, f Frame) error
	Close() error
}

// Pinger is implemented by connections that support a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
