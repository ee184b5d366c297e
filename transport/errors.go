package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"light-rpc/message"
)

var (
	// ErrProtocolViolation ends a session that received a frame kind the
	// peer must never send (binary where text is expected).
	ErrProtocolViolation = errors.New("transport: protocol violation")

	// ErrConnectionClosed is delivered to every caller still waiting when
	// the session ends. Match with errors.Is; the concrete value is a
	// *ClosedError carrying the reason.
	ErrConnectionClosed = errors.New("transport: connection closed")

	// ErrSendFailed is returned when a request could not be queued because
	// the session is already dead.
	ErrSendFailed = errors.New("transport: send failed")

	// ErrDecodeMismatch is returned when a successful result cannot be
	// decoded into the caller's reply value.
	ErrDecodeMismatch = errors.New("transport: result does not match reply type")

	// ErrClientClosed is the reason recorded when Close ended the session.
	ErrClientClosed = errors.New("transport: closed by client")
)

// ClosedError reports that the session ended before a reply arrived.
type ClosedError struct {
	Reason error
}

func (e *ClosedError) Error() string {
	if e.Reason == nil {
		return ErrConnectionClosed.Error()
	}
	return ErrConnectionClosed.Error() + ": " + e.Reason.Error()
}

func (e *ClosedError) Is(target error) bool {
	return target == ErrConnectionClosed
}

func (e *ClosedError) Unwrap() error {
	return e.Reason
}

// TransportError wraps a failure of the underlying connection.
type TransportError struct {
	Op  string // "read", "write" or "ping"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is the error payload a peer returned for one request.
//
// Code, Message and Data are filled when the payload is a JSON-RPC error
// object; Raw always holds the payload as received.
type RemoteError struct {
	Code    int
	Message string
	Data    json.RawMessage
	Raw     json.RawMessage
}

func newRemoteError(raw json.RawMessage) *RemoteError {
	e := &RemoteError{Raw: append(json.RawMessage(nil), raw...)}
	if obj, ok := message.ParseError(raw); ok {
		e.Code = obj.Code
		e.Message = obj.Message
		e.Data = obj.Data
	}
	return e
}

func (e *RemoteError) Error() string {
	if e.Message != "" || e.Code != 0 {
		return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
	}
	return "remote error: " + string(e.Raw)
}
