package shell

import (
	"context"
	"fmt"
)

// TokenChecker 只判断本地是否保存了令牌
type TokenChecker interface {
	HasToken(ctx context.Context) (bool, error)
}

// Decision 守卫的判定结果
// Redirect 非空时应跳转到该路径而不是渲染 Route
type Decision struct {
	Route    Route
	Found    bool
	Redirect string
}

// Guard 受保护页面在没有令牌时跳转到登录页
// 令牌存在时直接渲染，不向后端校验
type Guard struct {
	tokens TokenChecker
}

func NewGuard(tokens TokenChecker) *Guard {
	return &Guard{tokens: tokens}
}

// Resolve 判定某个路径应当渲染什么
func (g *Guard) Resolve(ctx context.Context, path string) (Decision, error) {
	route, found := Match(path)
	if !found {
		return Decision{Route: route}, nil
	}

	ok, err := g.tokens.HasToken(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("读取登录状态失败: %w", err)
	}

	switch {
	case route.Protected && !ok:
		return Decision{Route: route, Found: true, Redirect: PathAuth}, nil
	case route.Path == PathAuth && ok:
		// 已登录时访问登录页直接回到看板
		return Decision{Route: route, Found: true, Redirect: PathDashboard}, nil
	default:
		return Decision{Route: route, Found: true}, nil
	}
}

// Authenticated 便捷方法，供命令行的受保护命令使用
func (g *Guard) Authenticated(ctx context.Context) (bool, error) {
	return g.tokens.HasToken(ctx)
}
