package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobflow-dashboard/internal/config"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("storage: key not found")

// Store 本地持久化键值存储，相当于网页版的 localStorage
// 同一进程内可并发使用
type Store interface {
	// Get 读取键值，键不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set 写入键值
	Set(ctx context.Context, key, value string) error
	// Remove 删除键，键不存在时不报错
	Remove(ctx context.Context, key string) error
	// Clear 删除全部键
	Clear(ctx context.Context) error
	// Close 释放底层资源
	Close() error
}

// New 根据配置创建存储
func New(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	switch cfg.Store.Driver {
	case "", "file":
		return NewFileStore(cfg.Store.Path)
	case "redis":
		return NewRedisStore(&cfg.Redis, cfg.Store.Namespace)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Store.Driver)
	}
}

// GetJSON 读取并反序列化 JSON 值
func GetJSON(ctx context.Context, s Store, key string, out any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("解析键 %s 的内容失败: %w", key, err)
	}
	return nil
}

// SetJSON 序列化为 JSON 后写入
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化键 %s 的内容失败: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
