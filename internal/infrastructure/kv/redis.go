package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores each value under "<prefix>:<namespace>:<key>". A positive ttl
// is refreshed on every write.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Key(namespace, key string) string {
	if r.prefix == "" {
		return fmt.Sprintf("%s:%s", namespace, key)
	}
	return fmt.Sprintf("%s:%s:%s", r.prefix, namespace, key)
}

func (r *Redis) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	const op = "Redis.Get"

	v, err := r.client.Get(ctx, r.Key(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key, value string) error {
	const op = "Redis.Set"

	if err := r.client.Set(ctx, r.Key(namespace, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	const op = "Redis.Delete"

	if err := r.client.Del(ctx, r.Key(namespace, key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
