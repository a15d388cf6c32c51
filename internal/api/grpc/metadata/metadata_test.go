package metadata

import (
	"context"
	"testing"

	grpcmetadata "google.golang.org/grpc/metadata"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Fatalf("expected req-123, got %q", got)
	}
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request ID, got %q", got)
	}
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("expected empty request ID for nil context, got %q", got)
	}
}

func TestRequestIDFromIncoming(t *testing.T) {
	md := grpcmetadata.Pairs(RequestIDHeader, "  req-456  ")
	ctx := grpcmetadata.NewIncomingContext(context.Background(), md)

	if got := RequestIDFromIncoming(ctx); got != "req-456" {
		t.Fatalf("expected trimmed req-456, got %q", got)
	}
}

func TestRequestIDFromIncomingMissing(t *testing.T) {
	if got := RequestIDFromIncoming(context.Background()); got != "" {
		t.Fatalf("expected empty for missing metadata, got %q", got)
	}
	md := grpcmetadata.Pairs("other-key", "value")
	ctx := grpcmetadata.NewIncomingContext(context.Background(), md)
	if got := RequestIDFromIncoming(ctx); got != "" {
		t.Fatalf("expected empty for absent header, got %q", got)
	}
}
