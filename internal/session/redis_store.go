package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. ttl is the refresh
// token lifetime; redis expires records on its own, no sweep needed.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "refreshToken:",
		ttl:    ttl,
	}
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Save(ctx context.Context, userID int64, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("session: empty refresh token")
	}
	return r.client.Set(ctx, r.key(userID), refreshToken, r.ttl).Err()
}

func (r *RedisStore) Find(ctx context.Context, userID int64) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisStore) Require(ctx context.Context, userID int64) (string, error) {
	val, ok, err := r.Find(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoSession
	}
	return val, nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
