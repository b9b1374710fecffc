package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zenstudio/backend/internal/model"
)

const defaultRedisPrefix = "studio"

// RedisBackend stores each collection as a JSON string under
// "<prefix>:<collection>". Writes go through MULTI/EXEC so the three keys
// change together.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend parses url, connects and pings the server.
func NewRedisBackend(ctx context.Context, rawURL, prefix string) (*RedisBackend, error) {
	if rawURL == "" {
		rawURL = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisBackendWithClient(client, prefix), nil
}

// NewRedisBackendWithClient wraps an existing client without pinging it.
func NewRedisBackendWithClient(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Name() string {
	return "redis:" + b.client.Options().Addr + "/" + b.prefix
}

func (b *RedisBackend) key(c model.Collection) string {
	return b.prefix + ":" + string(c)
}

func (b *RedisBackend) keys() []string {
	keys := make([]string, 0, len(model.Collections))
	for _, c := range model.Collections {
		keys = append(keys, b.key(c))
	}
	return keys
}

func (b *RedisBackend) Exists(ctx context.Context) (bool, error) {
	n, err := b.client.Exists(ctx, b.keys()...).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *RedisBackend) Read(ctx context.Context) (*model.Dataset, error) {
	values, err := b.client.MGet(ctx, b.keys()...).Result()
	if err != nil {
		return nil, err
	}
	ds := model.NewDataset()
	for i, c := range model.Collections {
		if values[i] == nil {
			continue
		}
		s, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected %T under %s", values[i], b.key(c))
		}
		if err := decodeBucket(ds, string(c), []byte(s)); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (b *RedisBackend) Write(ctx context.Context, ds *model.Dataset) error {
	buckets, err := encodeBuckets(ds)
	if err != nil {
		return err
	}
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range model.Collections {
			pipe.Set(ctx, b.key(c), buckets[c], 0)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis write: %w", err)
	}
	return nil
}

func (b *RedisBackend) Close() error { return b.client.Close() }
