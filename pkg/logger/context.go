package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return LoggerWrapper()
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

// WithRequest tags the context logger with the trace id and, once known, the owner.
func WithRequest(ctx context.Context, traceID, ownerID string) context.Context {
	fields := []any{"trace_id", traceID}
	if ownerID != "" {
		fields = append(fields, "owner_id", ownerID)
	}
	return With(ctx, fields...)
}
