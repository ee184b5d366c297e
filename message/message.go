// Package message defines the JSON-RPC 2.0 envelopes exchanged with a peer.
//
// Request is the envelope a client writes; Response is what it reads back.
// A Response without an id is a broadcast (notification) rather than a reply.
// Payloads are kept as json.RawMessage: the engine never interprets params or
// results, it only routes them.
//
//	request:  {"jsonrpc":"2.0","id":7,"method":"getDevices","params":{...}}
//	response: {"jsonrpc":"2.0","id":7,"result":[...]}
//	error:    {"jsonrpc":"2.0","id":7,"error":{"code":-1,"message":"bad"}}
//	event:    {"jsonrpc":"2.0","result":{"event":"ping"}}
package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Version is the protocol tag carried by every envelope.
const Version = "2.0"

// Request carries a single call (or a notification when ID is nil).
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no reply.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response carries a reply (ID set) or a broadcast (ID nil).
//
// Result and Error hold arbitrary JSON. A JSON null in either field is
// treated the same as the field being absent.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// IsBroadcast reports whether the envelope is not correlated to a request.
func (r *Response) IsBroadcast() bool {
	return r.ID == nil
}

// HasError reports whether the envelope carries a non-null error payload.
func (r *Response) HasError() bool {
	return present(r.Error)
}

// HasResult reports whether the envelope carries a non-null result payload.
func (r *Response) HasResult() bool {
	return present(r.Result)
}

// Error codes reserved by JSON-RPC 2.0.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000 // first of the implementation-defined range
)

// Error is the conventional JSON-RPC 2.0 error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error lets a handler return an *Error to choose the code sent back.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// ParseError interprets a raw error payload as an Error object. Peers are
// free to send any JSON value as an error; when the payload is not an
// object the returned Error is zero and ok is false.
func ParseError(raw json.RawMessage) (e Error, ok bool) {
	if !present(raw) {
		return Error{}, false
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return Error{}, false
	}
	return e, true
}

// ID returns a pointer to id, for building envelopes inline.
func ID(id uint64) *uint64 {
	return &id
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
