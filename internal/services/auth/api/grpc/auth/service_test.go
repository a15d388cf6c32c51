package auth

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	authv1 "github.com/ebarkhatov/gatehouse/api/gen/go/auth/v1"
	apperrors "github.com/ebarkhatov/gatehouse/internal/platform/errors"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/credentials"
	"github.com/ebarkhatov/gatehouse/internal/services/auth/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var tokenFormat = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

type fakeSession struct {
	owner    string
	expireAt time.Time
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]fakeSession
	now      func() time.Time
	putErr   error
	getErr   error
}

func newFakeSessionStore(now func() time.Time) *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]fakeSession),
		now:      now,
	}
}

func (f *fakeSessionStore) Put(_ context.Context, token, owner string, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = fakeSession{owner: owner, expireAt: f.now().Add(ttl)}
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.sessions[token]
	if !ok || !f.now().Before(entry.expireAt) {
		return "", session.ErrNotFound
	}
	return entry.owner, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *fakeSessionStore, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)}
	store := newFakeSessionStore(clock.Now)

	creds, err := credentials.NewStore(credentials.Defaults())
	if err != nil {
		t.Fatalf("new credential store: %v", err)
	}
	svc, err := NewService(creds, store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.clock = clock.Now
	return svc, store, clock
}

func expectStatus(t *testing.T, err error, code codes.Code, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected grpc status, got %v", err)
	}
	if st.Code() != code {
		t.Fatalf("expected code %v, got %v (%s)", code, st.Code(), st.Message())
	}
	if message != "" && st.Message() != message {
		t.Fatalf("expected message %q, got %q", message, st.Message())
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, store, clock := newTestService(t)

	for _, cred := range credentials.Defaults() {
		resp, err := svc.Login(context.Background(), &authv1.LoginRequest{
			User:     cred.Username,
			Password: cred.Password,
		})
		if err != nil {
			t.Fatalf("login %s: %v", cred.Username, err)
		}
		if !tokenFormat.MatchString(resp.GetToken()) {
			t.Fatalf("unexpected token format %q", resp.GetToken())
		}
		wantExpire := clock.Now().Add(sessionTTL)
		if got := resp.GetExpireAt().AsTime(); !got.Equal(wantExpire) {
			t.Fatalf("expected expire at %v, got %v", wantExpire, got)
		}

		owner, err := store.Get(context.Background(), resp.GetToken())
		if err != nil {
			t.Fatalf("stored session: %v", err)
		}
		if owner != svc.instanceID {
			t.Fatalf("expected session owned by instance, got %q", owner)
		}
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), &authv1.LoginRequest{
		User:     "nobody",
		Password: "admin",
	})
	expectStatus(t, err, codes.Unauthenticated, "user not found")
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), &authv1.LoginRequest{
		User:     "root",
		Password: "wrong",
	})
	expectStatus(t, err, codes.Unauthenticated, "wrong password")
}

func TestLoginStoreFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.putErr = apperrors.Wrap(apperrors.CodeStoreUnavailable, "store session", context.DeadlineExceeded)

	_, err := svc.Login(context.Background(), &authv1.LoginRequest{
		User:     "root",
		Password: "admin",
	})
	expectStatus(t, err, codes.Internal, "")
}

func TestLoginValidateRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Login(context.Background(), &authv1.LoginRequest{
		User:     "root",
		Password: "admin",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Validate(context.Background(), &authv1.ValidateRequest{Token: resp.GetToken()}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Validate(context.Background(), &authv1.ValidateRequest{Token: "not-a-real-token"})
	expectStatus(t, err, codes.Unauthenticated, "wrong session ID")
}

func TestValidateExpiredToken(t *testing.T) {
	svc, _, clock := newTestService(t)

	resp, err := svc.Login(context.Background(), &authv1.LoginRequest{
		User:     "root",
		Password: "admin",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	clock.Advance(sessionTTL + time.Second)

	_, err = svc.Validate(context.Background(), &authv1.ValidateRequest{Token: resp.GetToken()})
	expectStatus(t, err, codes.Unauthenticated, "wrong session ID")
}

func TestValidateAfterRestartRejectsToken(t *testing.T) {
	svc, store, _ := newTestService(t)

	resp, err := svc.Login(context.Background(), &authv1.LoginRequest{
		User:     "root",
		Password: "admin",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// A restart is a new service instance with a fresh identity over the
	// same shared store.
	creds, err := credentials.NewStore(credentials.Defaults())
	if err != nil {
		t.Fatalf("new credential store: %v", err)
	}
	restarted, err := NewService(creds, store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if restarted.instanceID == svc.instanceID {
		t.Fatal("expected distinct instance identities")
	}

	_, err = restarted.Validate(context.Background(), &authv1.ValidateRequest{Token: resp.GetToken()})
	expectStatus(t, err, codes.Unauthenticated, "wrong session ID")
}

func TestValidateStoreFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.getErr = apperrors.Wrap(apperrors.CodeStoreUnavailable, "fetch session", context.DeadlineExceeded)

	_, err := svc.Validate(context.Background(), &authv1.ValidateRequest{Token: "any"})
	expectStatus(t, err, codes.Internal, "")
}

func TestValidateDecodeFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.getErr = apperrors.New(apperrors.CodeSessionDecode, "session owner is not decodable")

	_, err := svc.Validate(context.Background(), &authv1.ValidateRequest{Token: "any"})
	expectStatus(t, err, codes.Internal, "session owner is not decodable")
}

func TestConcurrentLoginsProduceDistinctTokens(t *testing.T) {
	svc, _, _ := newTestService(t)

	const n = 200
	tokens := make(chan string, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred := credentials.Defaults()[i%2]
			resp, err := svc.Login(context.Background(), &authv1.LoginRequest{
				User:     cred.Username,
				Password: cred.Password,
			})
			if err != nil {
				t.Errorf("login: %v", err)
				return
			}
			tokens <- resp.GetToken()
		}(i)
	}
	wg.Wait()
	close(tokens)

	seen := make(map[string]struct{}, n)
	for tok := range tokens {
		seen[tok] = struct{}{}
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct tokens, got %d", n, len(seen))
	}
}

func TestNilRequests(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), nil)
	expectStatus(t, err, codes.InvalidArgument, "")

	_, err = svc.Validate(context.Background(), nil)
	expectStatus(t, err, codes.InvalidArgument, "")
}
