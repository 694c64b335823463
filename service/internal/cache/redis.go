// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written by Redis.
const KeyPrefix = "templesim:"

// Redis stores tallies as JSON strings with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection. A zero ttl keeps
// entries until evicted.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (experiment.Tally, bool, error) {
	data, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return experiment.Tally{}, false, nil
	}
	if err != nil {
		return experiment.Tally{}, false, fmt.Errorf("redis get: %w", err)
	}
	var t experiment.Tally
	if err := json.Unmarshal(data, &t); err != nil {
		return experiment.Tally{}, false, fmt.Errorf("decode cached tally: %w", err)
	}
	return t, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, t experiment.Tally) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tally: %w", err)
	}
	if err := r.client.Set(ctx, KeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
