// Package metadata defines gRPC metadata keys and context helpers shared by
// the server interceptors and clients.
package metadata

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the gRPC metadata key for request correlation IDs.
const RequestIDHeader = "x-gatehouse-request-id"

// contextKey stores metadata values in context.
type contextKey string

// requestIDContextKey stores the request ID in context.
const requestIDContextKey contextKey = "gatehouse-request-id"

// RequestIDFromContext returns the request ID stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey).(string)
	return value
}

// WithRequestID stores the request ID in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromIncoming returns the request ID carried in incoming gRPC
// metadata, or empty when absent.
func RequestIDFromIncoming(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(RequestIDHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
