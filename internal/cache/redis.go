package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	applog "storefront/internal/log"
)

const keyPrefix = "storefront:state"

// RedisState keeps per-session local state in Redis. Each write refreshes the
// key's TTL so abandoned sessions age out on their own.
type RedisState struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisState connects to addr and fails fast when Redis is unreachable.
func NewRedisState(addr string, ttl time.Duration) (*RedisState, error) {
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	applog.Info(nil, "cache.redis.connected", map[string]any{"addr": addr, "ping": pong})
	return &RedisState{client: client, ttl: ttl}, nil
}

func stateKey(sessionID, key string) string {
	return keyPrefix + ":" + sessionID + ":" + key
}

// Get returns (nil, nil) when nothing is stored under key.
func (r *RedisState) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, stateKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return v, err
}

func (r *RedisState) Set(ctx context.Context, sessionID, key string, value []byte) error {
	return r.client.Set(ctx, stateKey(sessionID, key), value, r.ttl).Err()
}

func (r *RedisState) Delete(ctx context.Context, sessionID, key string) error {
	return r.client.Del(ctx, stateKey(sessionID, key)).Err()
}

func (r *RedisState) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	if err != nil {
		applog.Warn(nil, "cache.redis.close.fail", err, nil)
	}
	return err
}
