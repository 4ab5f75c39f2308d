package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	correlationIDKey contextKey = iota
	entityKey
	entityIDKey
)

// WithCycle returns a context carrying one processing cycle's identifiers
// so loggers derived deeper in the call chain stay correlated.
func WithCycle(ctx context.Context, correlationID, entity string, entityID int64) context.Context {
	ctx = context.WithValue(ctx, correlationIDKey, correlationID)
	ctx = context.WithValue(ctx, entityKey, entity)
	ctx = context.WithValue(ctx, entityIDKey, entityID)
	return ctx
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if rid, ok := ctx.Value(correlationIDKey).(string); ok && rid != "" {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	if entity, ok := ctx.Value(entityKey).(string); ok && entity != "" {
		fields = append(fields, slog.String(FieldEntity, entity))
	}
	if id, ok := ctx.Value(entityIDKey).(int64); ok && id > 0 {
		fields = append(fields, slog.Int64(FieldEntityID, id))
	}
	return fields
}

// WithContext returns a logger augmented with the context's cycle fields.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
