package service

import (
	"context"
	"fmt"
	"net/http"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/tracing"
	"jobflow-dashboard/internal/validation"
)

// Auth 登录、注册和退出
type Auth struct {
	*base
}

// Session 当前登录状态
type Session struct {
	Authenticated bool
	Email         string
}

// Login 登录成功后保存令牌和邮箱
func (a *Auth) Login(ctx context.Context, form validation.LoginForm) (Session, error) {
	return a.authenticate(ctx, constants.PathLogin, form)
}

// Signup 注册并直接登录
func (a *Auth) Signup(ctx context.Context, form validation.LoginForm) (Session, error) {
	return a.authenticate(ctx, constants.PathSignup, form)
}

func (a *Auth) authenticate(ctx context.Context, path string, form validation.LoginForm) (Session, error) {
	if err := validation.Validate(form); err != nil {
		return Session{}, err
	}
	creds := form.Credentials()

	var resp models.AuthResponse
	if err := a.client.Do(ctx, http.MethodPost, path, creds, &resp); err != nil {
		return Session{}, err
	}
	if resp.Token == "" {
		return Session{}, ErrNoToken
	}

	email := resp.User.Email
	if email == "" {
		email = creds.Email
	}
	if err := a.tokens.SetSession(ctx, resp.Token, email); err != nil {
		return Session{}, fmt.Errorf("保存登录状态失败: %w", err)
	}
	// 换了账号，之前缓存的数据都不再属于当前用户
	a.cache.Clear()

	a.logger.Info().
		Str("email", tracing.SafeAttributeValue("user.email", email, tracing.DefaultMaxLength)).
		Str("token", logger.MaskToken(resp.Token)).
		Msg("登录成功")
	return Session{Authenticated: true, Email: email}, nil
}

// Logout 删除令牌和邮箱，并清空缓存
func (a *Auth) Logout(ctx context.Context) error {
	if err := a.tokens.Clear(ctx); err != nil {
		return err
	}
	a.cache.Clear()
	a.logger.Info().Msg("已退出登录")
	return nil
}

// Session 读取本地登录状态，不访问网络
func (a *Auth) Session(ctx context.Context) (Session, error) {
	ok, err := a.tokens.HasToken(ctx)
	if err != nil || !ok {
		return Session{}, err
	}
	email, err := a.tokens.Email(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{Authenticated: true, Email: email}, nil
}
