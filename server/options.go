package server

import (
	"go.uber.org/zap"

	"light-rpc/codec"
)

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithCodec(c codec.Codec) Option {
	return func(s *Server) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithMaxFrameBytes limits inbound frames on every connection.
func WithMaxFrameBytes(n int64) Option {
	return func(s *Server) { s.maxFrame = n }
}
