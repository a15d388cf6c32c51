// Package auth provides the Go client consumers use to call the auth
// service. It wraps the generated gRPC client with dialing, health checks,
// and per-call tracing.
package auth

import (
	"context"
	"time"

	authv1 "github.com/ebarkhatov/gatehouse/api/gen/go/auth/v1"
	platformgrpc "github.com/ebarkhatov/gatehouse/internal/platform/grpc"
	"github.com/ebarkhatov/gatehouse/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

const tracerName = "auth-client"

// Client calls the auth service on behalf of another service.
type Client struct {
	conn   *grpc.ClientConn
	client authv1.AuthServiceClient
	tracer trace.Tracer
}

// Dial connects to the auth service and waits for its health check.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := platformgrpc.DialWithHealth(ctx, nil, addr, timeouts.GRPCDial, nil, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		return nil, err
	}
	return NewFromConn(conn), nil
}

// NewFromConn wraps an existing connection. The caller keeps ownership of
// the connection lifecycle when using this constructor directly.
func NewFromConn(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:   conn,
		client: authv1.NewAuthServiceClient(conn),
		tracer: otel.Tracer(tracerName),
	}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Login authenticates and returns the issued token with its expiry.
func (c *Client) Login(ctx context.Context, user, password string) (token string, expireAt time.Time, err error) {
	ctx, span := c.tracer.Start(ctx, "login")
	defer span.End()
	defer func() {
		if err != nil {
			span.SetAttributes(attribute.Bool("error", true))
			span.RecordError(err)
		} else {
			span.AddEvent("login successful")
		}
	}()

	response, err := c.client.Login(ctx, &authv1.LoginRequest{
		User:     user,
		Password: password,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return response.GetToken(), response.GetExpireAt().AsTime(), nil
}

// Validate checks that a previously issued token is still accepted.
func (c *Client) Validate(ctx context.Context, token string) (err error) {
	ctx, span := c.tracer.Start(ctx, "validate")
	defer span.End()
	defer func() {
		if err != nil {
			span.SetAttributes(attribute.Bool("error", true))
			span.RecordError(err)
		} else {
			span.AddEvent("validate successful")
		}
	}()

	_, err = c.client.Validate(ctx, &authv1.ValidateRequest{Token: token})
	return err
}
