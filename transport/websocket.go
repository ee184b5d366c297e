package transport

import (
	"context"
	"errors"
	"io"

	"github.com/coder/websocket"

	"light-rpc/protocol"
)

// WebSocketConn adapts a coder/websocket connection to Conn.
type WebSocketConn struct {
	ws *websocket.Conn
}

// NewWebSocketConn wraps an open WebSocket. maxFrame > 0 overrides the
// library's default read limit.
func NewWebSocketConn(ws *websocket.Conn, maxFrame int64) *WebSocketConn {
	if maxFrame > 0 {
		ws.SetReadLimit(maxFrame)
	}
	return &WebSocketConn{ws: ws}
}

// ReadFrame returns io.EOF when the peer sent a normal or going-away close.
func (c *WebSocketConn) ReadFrame(ctx context.Context) (Frame, error) {
	typ, data, err := c.ws.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return Frame{}, io.EOF
		}
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}

	kind := protocol.KindText
	if typ == websocket.MessageBinary {
		kind = protocol.KindBinary
	}
	return Frame{Kind: kind, Data: data}, nil
}

func (c *WebSocketConn) WriteFrame(ctx context.Context, f Frame) error {
	typ := websocket.MessageText
	if f.Kind == protocol.KindBinary {
		typ = websocket.MessageBinary
	}
	return c.ws.Write(ctx, typ, f.Data)
}

func (c *WebSocketConn) Ping(ctx context.Context) error {
	return c.ws.Ping(ctx)
}

func (c *WebSocketConn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}
