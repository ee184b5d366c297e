package message

import (
	"encoding/json"
	"testing"
)

func TestResponsePayloadPresence(t *testing.T) {
	cases := []struct {
		raw       string
		broadcast bool
		hasResult bool
		hasError  bool
	}{
		{`{"jsonrpc":"2.0","id":1,"result":{"a":1}}`, false, true, false},
		{`{"jsonrpc":"2.0","id":1,"result":null}`, false, false, false},
		{`{"jsonrpc":"2.0","id":1,"error":{"code":-1,"message":"bad"}}`, false, false, true},
		{`{"jsonrpc":"2.0","id":1,"error":null,"result":3}`, false, true, false},
		{`{"jsonrpc":"2.0","id":null,"result":{"event":"ping"}}`, true, true, false},
		{`{"jsonrpc":"2.0","result":{"event":"ping"}}`, true, true, false},
	}

	for _, tc := range cases {
		var resp Response
		if err := json.Unmarshal([]byte(tc.raw), &resp); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if resp.IsBroadcast() != tc.broadcast {
			t.Errorf("%s: broadcast = %v, want %v", tc.raw, resp.IsBroadcast(), tc.broadcast)
		}
		if resp.HasResult() != tc.hasResult {
			t.Errorf("%s: hasResult = %v, want %v", tc.raw, resp.HasResult(), tc.hasResult)
		}
		if resp.HasError() != tc.hasError {
			t.Errorf("%s: hasError = %v, want %v", tc.raw, resp.HasError(), tc.hasError)
		}
	}
}

func TestParseError(t *testing.T) {
	e, ok := ParseError(json.RawMessage(`{"code":-1,"message":"bad","data":{"x":1}}`))
	if !ok {
		t.Fatal("expect structured error to parse")
	}
	if e.Code != -1 || e.Message != "bad" {
		t.Fatalf("unexpected error object: %+v", e)
	}
	if string(e.Data) != `{"x":1}` {
		t.Fatalf("data mismatch: %s", e.Data)
	}

	if _, ok := ParseError(json.RawMessage(`"just a string"`)); ok {
		t.Fatal("string error payload should not parse as an object")
	}
	if _, ok := ParseError(nil); ok {
		t.Fatal("absent error payload should not parse")
	}
}

func TestRequestNotification(t *testing.T) {
	req := &Request{JSONRPC: Version, Method: "ping"}
	if !req.IsNotification() {
		t.Fatal("request without id should be a notification")
	}
	req.ID = ID(0)
	if req.IsNotification() {
		t.Fatal("request with id 0 is a call, not a notification")
	}
}
