package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Law2x/yeloSpot/config"
)

// RedisSnapshot keeps the snapshot under a single key.
type RedisSnapshot struct {
	client *redis.Client
	key    string
}

func openRedis(cfg *config.RedisConfig) (*RedisSnapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisSnapshot(client, cfg.Key), nil
}

func NewRedisSnapshot(client *redis.Client, key string) *RedisSnapshot {
	if key == "" {
		key = "yelospot:orders"
	}
	return &RedisSnapshot{client: client, key: key}
}

func (r *RedisSnapshot) Name() string { return "redis:" + r.key }

func (r *RedisSnapshot) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (r *RedisSnapshot) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSnapshot) Close() error { return r.client.Close() }
