package http

import "context"

type contextKey string

const requestIDContextKey contextKey = "decision_request_id"

// ContextWithRequestID injects the request identifier resolved from the
// request path.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext extracts a request identifier previously associated
// with the context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
