package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"light-rpc/transport"
)

const tracerName = "light-rpc/client"

// Tracing starts a client span per call. A nil tracer uses the global
// provider, which is a no-op until the application installs one.
func Tracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return func(next Invoker) Invoker {
		return func(ctx context.Context, method string, params, reply any) error {
			ctx, span := tracer.Start(ctx, method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("rpc.system", "jsonrpc"),
					attribute.String("rpc.method", method),
					attribute.String("rpc.jsonrpc.version", "2.0"),
				))
			defer span.End()

			err := next(ctx, method, params, reply)
			if err != nil {
				var remote *transport.RemoteError
				if errors.As(err, &remote) {
					span.SetAttributes(
						attribute.Int("rpc.jsonrpc.error_code", remote.Code),
						attribute.String("rpc.jsonrpc.error_message", remote.Message),
					)
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
