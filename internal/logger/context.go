package logger

import (
	"context"

	"go.uber.org/zap"
)

// ctxKey is unexported so callers can only attach ids through WithRequestID.
type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores the id used to correlate log lines of one request
// across the handler, service and repository layers.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger, enriched with the request id when the
// context carries one.
func FromCtx(ctx context.Context) *zap.Logger {
	if reqID := RequestIDFrom(ctx); reqID != "" {
		return L().With(zap.String("request_id", reqID))
	}
	return L()
}
