package shell

import (
	"context"
	"errors"
	"testing"

	"jobflow-dashboard/internal/credentials"
	"jobflow-dashboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	r, ok := Match("/urls/")
	require.True(t, ok)
	assert.Equal(t, "urls", r.Name)

	r, ok = Match("/?tab=1")
	require.True(t, ok)
	assert.Equal(t, "dashboard", r.Name)

	r, ok = Match("/nope")
	assert.False(t, ok)
	assert.Equal(t, NotFound, r)
}

func TestNavItems(t *testing.T) {
	items := NavItems()
	require.Len(t, items, 5)
	assert.Equal(t, NavItem{ID: "cv-builder", Label: "AI CV Builder", Path: "/cv-builder"}, items[3])

	items[0].Label = "changed"
	assert.Equal(t, "Dashboard", NavItems()[0].Label, "返回副本")

	assert.Equal(t, "settings", ActiveTab("/settings"))
	assert.Equal(t, "dashboard", ActiveTab("/jobs"))
	assert.Equal(t, "", ActiveTab("/auth"))
}

func TestGuardResolve(t *testing.T) {
	ctx := context.Background()
	tokens := credentials.NewTokenStore(storage.NewMemoryStore())
	g := NewGuard(tokens)

	d, err := g.Resolve(ctx, "/applications")
	require.NoError(t, err)
	assert.Equal(t, PathAuth, d.Redirect, "未登录访问受保护页面跳转登录页")

	d, err = g.Resolve(ctx, "/auth")
	require.NoError(t, err)
	assert.Empty(t, d.Redirect)

	d, err = g.Resolve(ctx, "/missing")
	require.NoError(t, err)
	assert.False(t, d.Found)
	assert.Empty(t, d.Redirect, "未知路径不跳转")

	require.NoError(t, tokens.SetSession(ctx, "jwt", "a@b.co"))

	d, err = g.Resolve(ctx, "/applications")
	require.NoError(t, err)
	assert.Empty(t, d.Redirect)
	assert.Equal(t, "Applications", d.Route.Title)

	d, err = g.Resolve(ctx, "/auth")
	require.NoError(t, err)
	assert.Equal(t, PathDashboard, d.Redirect)
}

type brokenTokens struct{}

func (brokenTokens) HasToken(context.Context) (bool, error) {
	return false, errors.New("disk gone")
}

func TestGuardStoreError(t *testing.T) {
	_, err := NewGuard(brokenTokens{}).Resolve(context.Background(), "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
