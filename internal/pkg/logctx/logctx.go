// Package logctx carries trace and correlation identifiers on a context so
// that log lines from one request or task can be joined.
package logctx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type traceKeyType struct{}
type correlationKeyType struct{}

var traceKey = traceKeyType{}
var correlationKey = correlationKeyType{}

// Module placeholder (no providers needed, helpers only)
var Module = fx.Module("logctx")

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

func TraceID(ctx context.Context) (string, bool) {
	return stringValue(ctx, traceKey)
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationKey, correlationID)
}

func CorrelationID(ctx context.Context) (string, bool) {
	return stringValue(ctx, correlationKey)
}

// Fields returns the identifiers on ctx as zap fields.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id, ok := TraceID(ctx); ok {
		fields = append(fields, zap.String("trace_id", id))
	}
	if id, ok := CorrelationID(ctx); ok {
		fields = append(fields, zap.String("correlation_id", id))
	}
	return fields
}

func stringValue(ctx context.Context, key any) (string, bool) {
	s, ok := ctx.Value(key).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
