package session

import (
	"context"
	"time"
	"unicode/utf8"

	apperrors "github.com/ebarkhatov/gatehouse/internal/platform/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisConfig holds connection settings for the Redis-backed store.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	PoolTimeout time.Duration
}

// RedisStore is a Store backed by Redis. The client's bounded connection
// pool is the concurrency ceiling for store-bound work; acquisition blocks
// up to PoolTimeout and then fails, surfaced as a store error rather than
// a crash.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store. It does not connect;
// call Ping to verify connectivity at startup.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		PoolTimeout: cfg.PoolTimeout,
	})
	return &RedisStore{client: client}
}

// Ping verifies store connectivity. Startup-time failures are fatal to the
// process; request-time failures are not.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "session store unreachable", err)
	}
	return nil
}

// Put implements Store. The expiry is enforced by Redis; no renewal exists.
func (s *RedisStore) Put(ctx context.Context, token, owner string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+token, owner, ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "store session", err)
	}
	return nil
}

// Get implements Store. Missing and expired tokens both surface as
// ErrNotFound; a stored value that is not valid owner-identity text is a
// decode error.
func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	value, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStoreUnavailable, "fetch session", err)
	}
	return decodeOwner(value)
}

// Close releases the client's connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// decodeOwner validates the stored owner-identity encoding.
func decodeOwner(value string) (string, error) {
	if value == "" || !utf8.ValidString(value) {
		return "", apperrors.New(apperrors.CodeSessionDecode, "session owner is not decodable")
	}
	return value, nil
}
