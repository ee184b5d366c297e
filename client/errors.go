package client

import "light-rpc/transport"

// Errors returned by Call, re-exported so callers need only this package.
var (
	ErrConnectionClosed = transport.ErrConnectionClosed
	ErrSendFailed       = transport.ErrSendFailed
	ErrDecodeMismatch   = transport.ErrDecodeMismatch
	ErrClientClosed     = transport.ErrClientClosed
)

type (
	RemoteError    = transport.RemoteError
	ClosedError    = transport.ClosedError
	TransportError = transport.TransportError
)
