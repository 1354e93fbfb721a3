package verification

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps pending email verification codes. A code stays valid until
// its TTL elapses or signup/password-reset consumes it.
type Store interface {
	SaveCode(ctx context.Context, email, code string) error
	IsValidToken(ctx context.Context, email, code string) (bool, error)
	DeleteToken(ctx context.Context, email string) error
}

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "verification:",
		ttl:    ttl,
	}
}

func (r *RedisStore) key(email string) string {
	return r.prefix + email
}

func (r *RedisStore) SaveCode(ctx context.Context, email, code string) error {
	return r.client.Set(ctx, r.key(email), code, r.ttl).Err()
}

func (r *RedisStore) IsValidToken(ctx context.Context, email, code string) (bool, error) {
	val, err := r.client.Get(ctx, r.key(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return code != "" && val == code, nil
}

func (r *RedisStore) DeleteToken(ctx context.Context, email string) error {
	return r.client.Del(ctx, r.key(email)).Err()
}
