package contextutil

import (
	"context"

	"go.uber.org/zap"
)

const loggerKey contextKey = "logger"

// GetLogger returns the request-scoped logger, falling back to the
// given default and finally the process-global logger.
func GetLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.L()
}

func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}
