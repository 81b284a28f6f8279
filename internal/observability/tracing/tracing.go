package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InjectTraceID attaches a logger carrying a fresh traceId to ctx.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	logger := loggerFrom(ctx).With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// InjectCycle tags the context logger with a refresh cycle kind and sequence,
// so every query log line of one cycle can be correlated.
func InjectCycle(ctx context.Context, kind string, seq uint64) context.Context {
	id := uuid.New().String()
	logger := loggerFrom(ctx).With().
		Str("traceId", id).
		Str("cycle", kind).
		Uint64("seq", seq).
		Logger()
	return logger.WithContext(ctx)
}

// loggerFrom prefers the logger already carried by ctx and falls back to the global one
func loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}
