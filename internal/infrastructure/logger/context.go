package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	actorKey
)

func withLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request logger, or a no-op logger outside a request
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and a logger that carries it
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l = l.With(zap.String("request_id", requestID))
	return withLogger(context.WithValue(ctx, requestIDKey, requestID), l), l
}

// WithActor stores the caller identity stamped on ledger writes and history
// records, with a logger that carries it.
func WithActor(ctx context.Context, l *zap.Logger, actor string) (context.Context, *zap.Logger) {
	l = l.With(Actor(actor))
	return withLogger(context.WithValue(ctx, actorKey, actor), l), l
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetActor returns "" when the caller did not identify itself
func GetActor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}

// WithTraceContext adds trace_id and span_id when ctx carries a valid span
func WithTraceContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(zap.String("trace_id", sc.TraceID().String()), zap.String("span_id", sc.SpanID().String()))
}

// L is FromContext with trace fields
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
