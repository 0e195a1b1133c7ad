package services

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	requestIDKey  contextKey = "request_id"
	generationKey contextKey = "generation"
)

// WithSessionID annotates context with the CLI session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithGeneration annotates context with the query dispatch generation.
func WithGeneration(ctx context.Context, gen uint64) context.Context {
	return context.WithValue(ctx, generationKey, gen)
}

// GenerationFromContext returns the dispatch generation if present.
func GenerationFromContext(ctx context.Context) (uint64, bool) {
	v, ok := ctx.Value(generationKey).(uint64)
	return v, ok
}
