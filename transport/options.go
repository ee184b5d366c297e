package transport

import (
	"time"

	"go.uber.org/zap"

	"light-rpc/codec"
	"light-rpc/message"
)

// BroadcastHandler receives id-less envelopes. It runs on the session's
// read goroutine, so a slow handler delays every reply behind it.
type BroadcastHandler func(resp *message.Response)

// Option configures a ClientTransport.
type Option func(*options)

type options struct {
	codec       codec.Codec
	logger      *zap.Logger
	onBroadcast BroadcastHandler
	sendQueue   int
	heartbeat   time.Duration
}

func defaultOptions() options {
	return options{
		codec:     codec.Default,
		logger:    zap.NewNop(),
		sendQueue: 1,
	}
}

// WithCodec sets the envelope codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBroadcastHandler registers the observer for id-less envelopes.
func WithBroadcastHandler(h BroadcastHandler) Option {
	return func(o *options) { o.onBroadcast = h }
}

// WithSendQueue sets the capacity of the outbound queue. Small values make
// a slow connection push back on callers instead of buffering.
func WithSendQueue(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sendQueue = n
		}
	}
}

// WithHeartbeat pings the peer every interval when the connection
// implements Pinger. A failed ping ends the session. Zero disables it.
func WithHeartbeat(interval time.Duration) Option {
	return func(o *options) { o.heartbeat = interval }
}
