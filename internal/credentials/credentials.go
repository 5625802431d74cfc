package credentials

import (
	"context"
	"errors"
	"fmt"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/storage"
)

// Provider 提供请求所需的 bearer token
// HTTP 客户端每次请求都调用 Get，不在内存里缓存令牌
type Provider interface {
	// Get 返回当前令牌，未登录时返回空字符串和 nil
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// TokenStore 把令牌和登录邮箱保存在本地存储的固定键下
type TokenStore struct {
	store storage.Store
}

var _ Provider = (*TokenStore)(nil)

// NewTokenStore 创建令牌存储
func NewTokenStore(store storage.Store) *TokenStore {
	return &TokenStore{store: store}
}

// Get 读取令牌
func (t *TokenStore) Get(ctx context.Context) (string, error) {
	return t.read(ctx, constants.KeyToken)
}

// Set 写入令牌，空令牌等同于 Clear
func (t *TokenStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return t.Clear(ctx)
	}
	if err := t.store.Set(ctx, constants.KeyToken, token); err != nil {
		return fmt.Errorf("保存令牌失败: %w", err)
	}
	return nil
}

// Email 读取登录邮箱
func (t *TokenStore) Email(ctx context.Context) (string, error) {
	return t.read(ctx, constants.KeyUserEmail)
}

// SetSession 登录成功后同时保存令牌和邮箱
func (t *TokenStore) SetSession(ctx context.Context, token, email string) error {
	if err := t.Set(ctx, token); err != nil {
		return err
	}
	if err := t.store.Set(ctx, constants.KeyUserEmail, email); err != nil {
		return fmt.Errorf("保存登录邮箱失败: %w", err)
	}
	return nil
}

// Clear 退出登录，删除令牌和邮箱
func (t *TokenStore) Clear(ctx context.Context) error {
	if err := t.store.Remove(ctx, constants.KeyToken); err != nil {
		return fmt.Errorf("删除令牌失败: %w", err)
	}
	if err := t.store.Remove(ctx, constants.KeyUserEmail); err != nil {
		return fmt.Errorf("删除登录邮箱失败: %w", err)
	}
	return nil
}

// HasToken 只检查令牌是否存在，不校验有效性
func (t *TokenStore) HasToken(ctx context.Context) (bool, error) {
	token, err := t.Get(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func (t *TokenStore) read(ctx context.Context, key string) (string, error) {
	v, err := t.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取 %s 失败: %w", key, err)
	}
	return v, nil
}

// Static 固定令牌，主要用于测试和脚本
type Static string

func (s Static) Get(context.Context) (string, error) { return string(s), nil }
func (s Static) Set(context.Context, string) error { return errors.New("static credentials are read-only") }
func (s Static) Clear(context.Context) error { return errors.New("static credentials are read-only") }
