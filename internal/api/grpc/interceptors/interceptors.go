// Package interceptors provides the ordered unary middleware pipeline for the
// auth gRPC server. Each interceptor observes or transforms the request and
// may short-circuit; composition happens by ordering in Chain, not by
// hard-wiring any single concern into the server.
package interceptors

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	grpcmeta "github.com/ebarkhatov/gatehouse/internal/api/grpc/metadata"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Chain composes unary interceptors into a single server option, applied in
// the order given.
func Chain(interceptors ...grpc.UnaryServerInterceptor) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(interceptors...)
}

// Default returns the standard pipeline: recovery outermost, then request ID
// tagging, then request logging.
func Default() grpc.ServerOption {
	return Chain(Recovery(), RequestID(), Logging())
}

// RequestID ensures every call carries a correlation ID. The inbound
// x-gatehouse-request-id metadata value is used when present; otherwise a
// fresh ID is generated.
func RequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := grpcmeta.RequestIDFromIncoming(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		return handler(grpcmeta.WithRequestID(ctx, requestID), req)
	}
}

// Logging logs method, status code, request ID, and duration for every call.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			if st, ok := status.FromError(err); ok {
				code = st.Code()
			} else {
				code = codes.Unknown
			}
		}
		log.Printf("%s code=%s request_id=%s duration=%s",
			info.FullMethod, code, grpcmeta.RequestIDFromContext(ctx), time.Since(start).Round(time.Microsecond))

		return resp, err
	}
}

// Recovery converts handler panics into INTERNAL errors so a single bad
// request cannot take down the process.
func Recovery() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic in %s: %v\n%s", info.FullMethod, r, debug.Stack())
				err = status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
