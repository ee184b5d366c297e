package client

import (
	"net/http"

	"github.com/coder/websocket"

	"light-rpc/transport"
)

func httpHandler(serve func(conn transport.Conn)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conn := transport.NewWebSocketConn(ws, 0)
		defer conn.Close()
		serve(conn)
	})
}
