package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"light-rpc/message"
)

// JSONCodec encodes envelopes with encoding/json.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

// EncodeRequest builds {"jsonrpc":"2.0","id":id,"method":method,"params":params}.
// Params are omitted when nil; a json.RawMessage is written as is.
func (JSONCodec) EncodeRequest(method string, params any, id *uint64) ([]byte, error) {
	raw, err := marshalPayload(params)
	if err != nil {
		return nil, fmt.Errorf("codec: encode params for %s: %w", method, err)
	}
	return json.Marshal(&message.Request{
		JSONRPC: message.Version,
		ID:      id,
		Method:  method,
		Params:  raw,
	})
}

func (JSONCodec) DecodeResponse(data []byte) (*message.Response, error) {
	var resp message.Response
	if err := decodeEnvelope(data, &resp); err != nil {
		return nil, err
	}
	if err := checkVersion(resp.JSONRPC); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (JSONCodec) DecodeRequest(data []byte) (*message.Request, error) {
	var req message.Request
	if err := decodeEnvelope(data, &req); err != nil {
		return nil, err
	}
	if err := checkVersion(req.JSONRPC); err != nil {
		return nil, err
	}
	if req.Method == "" {
		return nil, fmt.Errorf("%w: missing method", ErrMalformedEnvelope)
	}
	return &req, nil
}

func (JSONCodec) EncodeResponse(resp *message.Response) ([]byte, error) {
	out := *resp
	if out.JSONRPC == "" {
		out.JSONRPC = message.Version
	}
	return json.Marshal(&out)
}

// decodeEnvelope rejects anything that is not a JSON object before
// unmarshalling, so arrays, strings and bare literals count as malformed.
func decodeEnvelope(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: not a JSON object", ErrMalformedEnvelope)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return nil
}

func checkVersion(tag string) error {
	switch tag {
	case message.Version:
		return nil
	case "":
		return fmt.Errorf("%w: missing jsonrpc tag", ErrMalformedEnvelope)
	default:
		return fmt.Errorf("%w: unsupported jsonrpc version %q", ErrMalformedEnvelope, tag)
	}
}

func marshalPayload(v any) (json.RawMessage, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return json.RawMessage(p), nil
	}
	return json.Marshal(v)
}

// MarshalResult marshals a handler result for a response envelope. A nil
// result becomes JSON null.
func MarshalResult(v any) (json.RawMessage, error) {
	raw, err := marshalPayload(v)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return json.RawMessage("null"), nil
	}
	return raw, nil
}

// EncodeNotification builds an id-less result envelope, the shape a peer
// uses to broadcast an event: {"jsonrpc":"2.0","result":event}.
func EncodeNotification(event any) ([]byte, error) {
	raw, err := MarshalResult(event)
	if err != nil {
		return nil, fmt.Errorf("codec: encode notification: %w", err)
	}
	return json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
	}{message.Version, raw})
}
