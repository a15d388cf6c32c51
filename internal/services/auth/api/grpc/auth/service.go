package auth

import (
	"context"
	"time"

	authv1 "github.com/ebarkhatov/gatehouse/api/gen/go/auth/v1"
	apperrors "github.com/ebarkhatov/gatehouse/internal/platform/errors"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/credentials"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/session"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/token"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const tracerName = "auth"

// sessionTTL is the store-enforced session lifetime. No renewal exists; a
// session disappears when the TTL elapses.
const sessionTTL = 60 * time.Second

// Service implements the auth.v1.AuthService gRPC API.
//
// It is the stable surface other services call for a cheap, centralized
// identity check: Login issues a session token, Validate confirms the token
// still refers to a live session owned by this instance.
type Service struct {
	authv1.UnimplementedAuthServiceServer
	credentials *credentials.Store
	sessions    session.Store

	// instanceID is the owner tag stamped into every session this instance
	// creates. Generated once at construction and never mutated, so a
	// restart invalidates all outstanding sessions regardless of TTL.
	instanceID string

	issueToken func() (string, error)
	clock      func() time.Time
	ttl        time.Duration
	tracer     trace.Tracer
}

// NewService builds the auth service around the injected credential and
// session stores. The instance identity is generated here.
func NewService(creds *credentials.Store, sessions session.Store) (*Service, error) {
	instanceID, err := token.NewInstanceID()
	if err != nil {
		return nil, err
	}
	return &Service{
		credentials: creds,
		sessions:    sessions,
		instanceID:  instanceID,
		issueToken:  token.Issue,
		clock:       time.Now,
		ttl:         sessionTTL,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

// Login verifies credentials, issues a token, and persists the session with
// this instance as owner.
func (s *Service) Login(ctx context.Context, in *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "login request is required")
	}

	ctx, span := s.tracer.Start(ctx, "login")
	defer span.End()
	span.SetAttributes(attribute.String("request", in.String()))

	if err := s.credentials.Verify(in.GetUser(), in.GetPassword()); err != nil {
		return nil, s.fail(span, err)
	}
	span.AddEvent("user well known")

	tok, err := s.issueToken()
	if err != nil {
		return nil, s.fail(span, status.Errorf(codes.Internal, "issue token: %v", err))
	}

	if err := s.sessions.Put(ctx, tok, s.instanceID, s.ttl); err != nil {
		return nil, s.fail(span, err)
	}
	span.AddEvent("token stored")

	// Expiry is computed locally rather than read back from the store.
	expireAt := s.clock().Add(s.ttl)

	return &authv1.LoginResponse{
		Token:    tok,
		ExpireAt: timestamppb.New(expireAt),
	}, nil
}

// Validate checks that the token maps to a live session owned by this
// instance. Not-found, expired, and owner-mismatch sessions all surface the
// same "wrong session ID" reason.
func (s *Service) Validate(ctx context.Context, in *authv1.ValidateRequest) (*authv1.ValidateResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "validate request is required")
	}

	ctx, span := s.tracer.Start(ctx, "validate")
	defer span.End()
	span.SetAttributes(attribute.String("request", in.String()))

	owner, err := s.sessions.Get(ctx, in.GetToken())
	if err != nil {
		if apperrors.Is(err, session.ErrNotFound) {
			err = apperrors.New(apperrors.CodeWrongSession, "wrong session ID")
		}
		return nil, s.fail(span, err)
	}

	if owner != s.instanceID {
		return nil, s.fail(span, apperrors.New(apperrors.CodeWrongSession, "wrong session ID"))
	}
	span.AddEvent("token exists in store")

	return &authv1.ValidateResponse{}, nil
}

// fail annotates the span with the error and converts it to a gRPC status.
// Span annotation is a side channel only; it never alters the returned
// status.
func (s *Service) fail(span trace.Span, err error) error {
	span.SetAttributes(attribute.Bool("error", true))
	span.RecordError(err)

	if _, ok := status.FromError(err); ok {
		return err
	}
	return apperrors.HandleError(err)
}
