// Package codec converts JSON-RPC envelopes to and from text frames.
//
// The client side uses EncodeRequest and DecodeResponse; the server side
// (the simulated peer) uses the mirror pair DecodeRequest and EncodeResponse.
package codec

import (
	"errors"

	"light-rpc/message"
)

// ErrMalformedEnvelope is returned when an inbound frame cannot be decoded
// into an envelope: invalid JSON, not an object, or a missing/unknown
// protocol tag.
var ErrMalformedEnvelope = errors.New("codec: malformed envelope")

// Codec turns envelopes into frame payloads and back.
type Codec interface {
	EncodeRequest(method string, params any, id *uint64) ([]byte, error)
	DecodeResponse(data []byte) (*message.Response, error)
	DecodeRequest(data []byte) (*message.Request, error)
	EncodeResponse(resp *message.Response) ([]byte, error)
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = JSONCodec{}

// EncodeRequest encodes a request with the default codec.
func EncodeRequest(method string, params any, id *uint64) ([]byte, error) {
	return Default.EncodeRequest(method, params, id)
}

// DecodeResponse decodes a response with the default codec.
func DecodeResponse(data []byte) (*message.Response, error) {
	return Default.DecodeResponse(data)
}
