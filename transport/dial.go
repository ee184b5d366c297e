package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

// DefaultHandshakeTimeout bounds connection establishment.
const DefaultHandshakeTimeout = 2 * time.Second

// DialOptions configures Dial.
type DialOptions struct {
	HandshakeTimeout time.Duration
	MaxFrameBytes    int64
	Header           http.Header
	HTTPClient       *http.Client
}

// Dial opens a connection to rawURL. Supported schemes:
//
//	ws://, wss://         WebSocket, text frames
//	tcp://host:port       protocol frames over TCP
//	unix:///path/to/sock  protocol frames over a Unix socket
//
// Dial only establishes the connection; hand the result to
// NewClientTransport to start a session.
func Dial(ctx context.Context, rawURL string, opts DialOptions) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse url %q: %w", rawURL, err)
	}

	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch u.Scheme {
	case "ws", "wss":
		ws, resp, err := websocket.Dial(dctx, rawURL, &websocket.DialOptions{
			HTTPClient: opts.HTTPClient,
			HTTPHeader: opts.Header,
		})
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("transport: dial %s: %w", rawURL, err)
		}
		return NewWebSocketConn(ws, opts.MaxFrameBytes), nil

	case "tcp", "unix":
		network, addr := u.Scheme, u.Host
		if network == "unix" {
			addr = u.Path
		}
		var d net.Dialer
		nc, err := d.DialContext(dctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("transport: dial %s: %w", rawURL, err)
		}
		return NewStreamConn(nc, int(opts.MaxFrameBytes)), nil

	default:
		return nil, fmt.Errorf("transport: unsupported url scheme %q", u.Scheme)
	}
}
