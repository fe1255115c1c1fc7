package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier stores entries in a Redis server so several processes can share
// one cache. TTLs are enforced by Redis itself; a non-positive ttl stores
// the value without expiration.
type RedisTier struct {
	name   string
	client *redis.Client
}

// NewRedisTier creates a Redis-backed tier connected to addr.
func NewRedisTier(name, addr string) *RedisTier {
	return &RedisTier{
		name:   name,
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Name identifies the tier.
func (t *RedisTier) Name() string { return t.name }

// Get retrieves a value, mapping an absent key to a miss.
func (t *RedisTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := t.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value.
func (t *RedisTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return t.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value.
func (t *RedisTier) Delete(ctx context.Context, key string) error {
	return t.client.Del(ctx, key).Err()
}

// Close closes the underlying connection pool.
func (t *RedisTier) Close() error {
	return t.client.Close()
}

// Ensure RedisTier implements Tier.
var _ Tier = (*RedisTier)(nil)
