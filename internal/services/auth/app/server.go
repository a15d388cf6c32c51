package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	authv1 "github.com/ebarkhatov/gatehouse/api/gen/go/auth/v1"
	"github.com/ebarkhatov/gatehouse/internal/api/grpc/interceptors"
	"github.com/ebarkhatov/gatehouse/internal/platform/timeouts"
	authservice "github.com/ebarkhatov/gatehouse/internal/services/auth/api/grpc/auth"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/credentials"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/session"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Config holds the auth server settings.
type Config struct {
	Port          int
	RedisAddr     string
	RedisPassword string
	RedisPoolSize int
}

// Server hosts the auth service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *session.RedisStore
}

// New creates a configured auth server listening on the configured port.
// It verifies session store connectivity before accepting traffic; a store
// that is unreachable at startup is fatal.
func New(ctx context.Context, cfg Config) (*Server, error) {
	store := session.NewRedisStore(session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.StorePing)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("session store: %w", err)
	}

	server, err := newWithStore(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	server.store = store
	return server, nil
}

// newWithStore wires the server around an externally provided session store.
func newWithStore(cfg Config, store session.Store) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	creds, err := credentials.NewStore(credentials.Defaults())
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("credential store: %w", err)
	}
	service, err := authservice.NewService(creds, store)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("auth service: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		interceptors.Default(),
	)
	healthServer := health.NewServer()
	authv1.RegisterAuthServiceServer(grpcServer, service)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("auth.v1.AuthService", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
	}, nil
}

// Addr returns the listener address for the auth server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an auth server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the auth server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("auth server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close session store: %v", err)
	}
}
