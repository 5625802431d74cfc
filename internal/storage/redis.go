package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("jobflow-dashboard/storage/redis")

var _ Store = (*RedisStore)(nil)

// RedisStore 把一个命名空间的全部键值保存在同一个 HASH 中
// 多台设备共用同一个 Redis 时可以共享登录状态
type RedisStore struct {
	Client    *redis.Client
	config    *config.RedisConfig
	namespace string
}

// NewRedisStore creates a new Redis-backed store and pings the server
func NewRedisStore(cfg *config.RedisConfig, namespace string) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return NewRedisStoreWithClient(client, cfg, namespace), nil
}

// NewRedisStoreWithClient 使用已有的客户端创建存储
func NewRedisStoreWithClient(client *redis.Client, cfg *config.RedisConfig, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	if cfg == nil {
		cfg = &config.RedisConfig{}
	}
	return &RedisStore{Client: client, config: cfg, namespace: namespace}
}

// hashKey 当前命名空间对应的 HASH 键
func (r *RedisStore) hashKey() string {
	return fmt.Sprintf(constants.KeyStoreHash, r.namespace)
}

// expireDuration 返回配置的过期时间，0 表示不过期
func (r *RedisStore) expireDuration() time.Duration {
	if r.config.ExpireDays <= 0 {
		return 0
	}
	return time.Duration(r.config.ExpireDays) * 24 * time.Hour
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	ctx, span := redisTracer.Start(ctx, "store.Get")
	defer span.End()
	span.SetAttributes(attribute.String("store.key", key))

	v, err := r.Client.HGet(ctx, r.hashKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", fmt.Errorf("读取键 %s 失败: %w", key, err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	ctx, span := redisTracer.Start(ctx, "store.Set")
	defer span.End()
	span.SetAttributes(attribute.String("store.key", key))

	// 使用 pipeline 原子化写入和续期
	pipe := r.Client.TxPipeline()
	pipe.HSet(ctx, r.hashKey(), key, value)
	if ttl := r.expireDuration(); ttl > 0 {
		pipe.Expire(ctx, r.hashKey(), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入键 %s 失败: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.Client.HDel(ctx, r.hashKey(), key).Err(); err != nil {
		return fmt.Errorf("删除键 %s 失败: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.Client.Del(ctx, r.hashKey()).Err(); err != nil {
		return fmt.Errorf("清空命名空间 %s 失败: %w", r.namespace, err)
	}
	return nil
}

// Close closes the Redis client connection
func (r *RedisStore) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
