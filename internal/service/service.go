// Package service 按资源封装后端数据的读取和写入
// 读操作经过查询缓存，写操作成功后让相关的缓存键失效
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/credentials"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/messaging"
	"jobflow-dashboard/internal/querycache"
	"jobflow-dashboard/internal/storage"

	"github.com/rs/zerolog"
)

var (
	// ErrNotAuthenticated 需要登录的操作在没有令牌时返回
	ErrNotAuthenticated = errors.New("User not authenticated. Please log in again.")
	// ErrNoToken 登录响应中没有令牌
	ErrNoToken = errors.New("No token received")
	// ErrNoJobsSelected 自动申请时没有选择任何岗位
	ErrNoJobsSelected = errors.New("Please select at least one job to apply to")
	// ErrNoURLsSelected 打开链接时没有选择任何链接
	ErrNoURLsSelected = errors.New("Please select at least one URL to autofill")
	// ErrFileTooLarge 简历超过大小上限
	ErrFileTooLarge = errors.New("File size must be less than 5MB")
	// ErrUnsupportedFileType 简历不是 PDF 或 Word 文档
	ErrUnsupportedFileType = errors.New("Only PDF and Word documents are allowed")
	// ErrDiscoveryTimeout 岗位发现超时
	ErrDiscoveryTimeout = errors.New("Sorry, we couldn't find relevant results for the settings above. Try adjusting your search criteria.")
)

// Deps 各资源共享的依赖
type Deps struct {
	Config    *config.Config
	Client    *apiclient.Client
	Cache     *querycache.Cache
	Store     storage.Store
	Tokens    *credentials.TokenStore
	Messenger messaging.Messenger
	Opener    LinkOpener
	// StorageHTTP 直传对象存储使用的客户端，不携带 bearer token
	StorageHTTP *http.Client
}

// Services 看板和命令行使用的全部资源
type Services struct {
	Auth         *Auth
	Applications *Applications
	JobURLs      *JobURLs
	Preferences  *Preferences
	Profile      *Profile
	Stats        *Stats
	Discovery    *Discovery
	Uploads      *Uploads
	AutoApply    *AutoApply
	Settings     *Settings

	deps Deps
}

// New 组装各资源
func New(d Deps) *Services {
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Messenger == nil {
		d.Messenger = messaging.NoopMessenger{}
	}
	if d.Opener == nil {
		d.Opener = BrowserOpener{}
	}
	if d.StorageHTTP == nil {
		d.StorageHTTP = &http.Client{Timeout: time.Duration(d.Config.Upload.TimeoutSeconds) * time.Second}
	}

	b := &base{
		client: d.Client,
		cache:  d.Cache,
		store:  d.Store,
		tokens: d.Tokens,
	}
	return &Services{
		Auth:         &Auth{base: b.named("auth")},
		Applications: &Applications{base: b.named("applications")},
		JobURLs:      &JobURLs{base: b.named("job_urls")},
		Preferences:  &Preferences{base: b.named("preferences")},
		Profile:      &Profile{base: b.named("profile")},
		Stats:        &Stats{base: b.named("stats")},
		Discovery: &Discovery{
			base:    b.named("discovery"),
			timeout: config.GetDuration(d.Config.Discovery.Timeout, constants.DefaultDiscoveryTimeout),
		},
		Uploads: &Uploads{
			base:         b.named("uploads"),
			maxBytes:     d.Config.UploadMaxBytes(),
			allowedTypes: d.Config.Upload.AllowedTypes,
			storageHTTP:  d.StorageHTTP,
		},
		AutoApply: &AutoApply{
			base:      b.named("auto_apply"),
			messenger: d.Messenger,
			opener:    d.Opener,
			interval:  config.GetDuration(d.Config.Discovery.OpenInterval, constants.DefaultOpenInterval),
		},
		Settings: &Settings{
			base:            b.named("settings"),
			defaultEndpoint: d.Config.API.BaseURL,
		},
		deps: d,
	}
}

// Tokens 令牌存储，供路由守卫使用
func (s *Services) Tokens() *credentials.TokenStore {
	return s.deps.Tokens
}

// Close 释放存储和消息通道
func (s *Services) Close() error {
	var errs []error
	if s.deps.Messenger != nil {
		errs = append(errs, s.deps.Messenger.Close())
	}
	if s.deps.Store != nil {
		errs = append(errs, s.deps.Store.Close())
	}
	return errors.Join(errs...)
}

// base 每个资源持有的公共依赖
type base struct {
	client *apiclient.Client
	cache  *querycache.Cache
	store  storage.Store
	tokens *credentials.TokenStore
	logger zerolog.Logger
}

func (b *base) named(component string) *base {
	c := *b
	c.logger = logger.Component("service." + component)
	return &c
}

// requireToken 需要登录的操作在发请求前检查令牌
func (b *base) requireToken(ctx context.Context) error {
	ok, err := b.tokens.HasToken(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}
	return nil
}

// query 带缓存的 GET，键就是后端路径
// on401 为 ReturnNull 时，401 得到 T 的零值
func query[T any](ctx context.Context, b *base, key string, on401 apiclient.UnauthorizedBehavior) (T, error) {
	return querycache.Fetch(ctx, b.cache, key, func(ctx context.Context) (T, error) {
		var out T
		data, err := b.client.Query(ctx, key, on401)
		if err != nil {
			return out, err
		}
		if err := apiclient.Unmarshal(data, &out); err != nil {
			return out, fmt.Errorf("%s: %w", key, err)
		}
		return out, nil
	})
}

// mutate 不重试的写操作，成功后使 invalidate 中的键失效
func mutate[T any](ctx context.Context, b *base, method, path string, body any, invalidate ...string) (T, error) {
	return querycache.Mutate(ctx, b.cache, func(ctx context.Context) (T, error) {
		var out T
		err := b.client.Do(ctx, method, path, body, &out)
		return out, err
	}, invalidate...)
}

// mutateNoContent 与 mutate 相同，但忽略响应体
func mutateNoContent(ctx context.Context, b *base, method, path string, body any, invalidate ...string) error {
	_, err := querycache.Mutate(ctx, b.cache, func(ctx context.Context) (struct{}, error) {
		resp, err := b.client.Request(ctx, method, path, body)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, resp.Body.Close()
	}, invalidate...)
	return err
}
