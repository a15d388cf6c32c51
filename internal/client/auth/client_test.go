package auth

import (
	"context"
	"net"
	"testing"
	"time"

	authv1 "github.com/ebarkhatov/gatehouse/api/gen/go/auth/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type fakeAuthServer struct {
	authv1.UnimplementedAuthServiceServer

	token    string
	expireAt time.Time
}

func (f *fakeAuthServer) Login(_ context.Context, in *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	if in.GetUser() != "root" || in.GetPassword() != "admin" {
		return nil, status.Error(codes.Unauthenticated, "wrong password")
	}
	return &authv1.LoginResponse{
		Token:    f.token,
		ExpireAt: timestamppb.New(f.expireAt),
	}, nil
}

func (f *fakeAuthServer) Validate(_ context.Context, in *authv1.ValidateRequest) (*authv1.ValidateResponse, error) {
	if in.GetToken() != f.token {
		return nil, status.Error(codes.Unauthenticated, "wrong session ID")
	}
	return &authv1.ValidateResponse{}, nil
}

func startFakeAuthServer(t *testing.T, fake *fakeAuthServer) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := grpc.NewServer()
	authv1.RegisterAuthServiceServer(server, fake)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	return listener.Addr().String()
}

func TestClientLoginAndValidate(t *testing.T) {
	expireAt := time.Date(2026, 2, 14, 10, 1, 0, 0, time.UTC)
	fake := &fakeAuthServer{token: "4bed0b97-4e36-4e13-8b08-1c006e2e3f0b", expireAt: expireAt}
	addr := startFakeAuthServer(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	token, gotExpire, err := client.Login(ctx, "root", "admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != fake.token {
		t.Fatalf("expected token %q, got %q", fake.token, token)
	}
	if !gotExpire.Equal(expireAt) {
		t.Fatalf("expected expire at %v, got %v", expireAt, gotExpire)
	}

	if err := client.Validate(ctx, token); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestClientSurfacesStatusErrors(t *testing.T) {
	fake := &fakeAuthServer{token: "4bed0b97-4e36-4e13-8b08-1c006e2e3f0b"}
	addr := startFakeAuthServer(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	_, _, err = client.Login(ctx, "root", "wrong")
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if st.Message() != "wrong password" {
		t.Fatalf("expected wrong password, got %q", st.Message())
	}

	err = client.Validate(ctx, "stale-token")
	st, ok = status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if st.Message() != "wrong session ID" {
		t.Fatalf("expected wrong session ID, got %q", st.Message())
	}
}

func TestDialFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := Dial(ctx, "127.0.0.1:1"); err == nil {
		t.Fatal("expected dial error")
	}
}
