package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces snapshot keys in a shared Redis.
const DefaultRedisPrefix = "enricher:cache:"

// RedisPersister stores each snapshot as one string key. Snapshots carry
// their own per-entry expiry, so keys are written without a Redis TTL.
type RedisPersister struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures a [RedisPersister].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisPersister connects to Redis and checks the connection.
func NewRedisPersister(ctx context.Context, cfg RedisConfig) (*RedisPersister, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}
	return NewRedisPersisterFromClient(client, cfg.Prefix), nil
}

// NewRedisPersisterFromClient wraps an existing client. An empty prefix
// means [DefaultRedisPrefix].
func NewRedisPersisterFromClient(client *redis.Client, prefix string) *RedisPersister {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisPersister{client: client, prefix: prefix}
}

func (p *RedisPersister) key(name string) string {
	return p.prefix + name
}

// Load reads the snapshot for name.
func (p *RedisPersister) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the snapshot for name.
func (p *RedisPersister) Save(ctx context.Context, name string, data []byte) error {
	return p.client.Set(ctx, p.key(name), data, 0).Err()
}

// Remove deletes the snapshot for name.
func (p *RedisPersister) Remove(ctx context.Context, name string) error {
	return p.client.Del(ctx, p.key(name)).Err()
}

// Close closes the Redis client.
func (p *RedisPersister) Close() error {
	return p.client.Close()
}

var _ Persister = (*RedisPersister)(nil)
