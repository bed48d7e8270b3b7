package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/flightrank/core"
)

// RedisStore 是 Redis 实现的 KeyValueStore。
// 航司先验以 Hash 存储，推理任务直接读取，不再扫描 train_df。
type RedisStore struct {
	client *redis.Client
}

var _ core.KeyValueStore = (*RedisStore)(nil)

// NewRedisStore 连接并 Ping 一次，失败返回 UNAVAILABLE
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: redis ping: "+err.Error())
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient 使用已有客户端
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) HSet(ctx context.Context, key string, fields map[string][]byte) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for f, v := range fields {
		values[f] = v
	}
	return r.client.HSet(ctx, key, values).Err()
}

func (r *RedisStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	vals, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(vals))
	for f, v := range vals {
		out[f] = []byte(v)
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
