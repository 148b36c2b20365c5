package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-mobile-verification/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient opens a Redis client and verifies connectivity with PING.
func NewClient(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// KV adapts a Redis client to the validity store's key/value contract.
type KV struct {
	client goredis.UniversalClient
}

func NewKV(client goredis.UniversalClient) *KV {
	return &KV{client: client}
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return k.client.Set(ctx, key, value, 0).Err()
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := k.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (k *KV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return k.client.Expire(ctx, key, ttl).Err()
}

// SetWithTTL issues SET key value EX ttl, so the value never exists without an expiry.
func (k *KV) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return k.client.Set(ctx, key, value, ttl).Err()
}
