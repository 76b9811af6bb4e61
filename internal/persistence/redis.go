package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend Redis 后端
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend 创建 Redis 后端；ttl<=0 表示不过期
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

// Get 读取
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r == nil || r.client == nil {
		return nil, false, nil
	}
	value, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入
func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Set(ctx, r.fullKey(key), value, r.ttl).Err()
}

// Delete 删除
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Del(ctx, r.fullKey(key)).Err()
}

func (r *RedisBackend) fullKey(key string) string {
	return JoinKey(r.prefix, key)
}
