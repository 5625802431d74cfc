package credentials

import (
	"context"
	"testing"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	tokens := NewTokenStore(store)

	token, err := tokens.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "未登录时应返回空令牌而不是错误")

	has, err := tokens.HasToken(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, tokens.SetSession(ctx, "tok-123", "me@example.com"))

	// 令牌保存在固定的键下
	raw, err := store.Get(ctx, constants.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", raw)

	email, err := tokens.Email(ctx)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", email)

	require.NoError(t, tokens.Clear(ctx))
	token, err = tokens.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	email, err = tokens.Email(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

// TestTokenStoreReadsFreshValue 令牌被外部修改后，下一次 Get 立即可见
func TestTokenStoreReadsFreshValue(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	tokens := NewTokenStore(store)

	require.NoError(t, tokens.Set(ctx, "first"))
	require.NoError(t, store.Set(ctx, constants.KeyToken, "second"))

	token, err := tokens.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, tokens.Set(ctx, ""))
	has, err := tokens.HasToken(ctx)
	require.NoError(t, err)
	assert.False(t, has, "写入空令牌等同于退出登录")
}

func TestStaticProvider(t *testing.T) {
	p := Static("fixed")
	token, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
	assert.Error(t, p.Set(context.Background(), "x"))
}
