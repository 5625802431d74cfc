package service

import (
	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/credentials"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/messaging"
	"jobflow-dashboard/internal/querycache"
	"jobflow-dashboard/internal/storage"
)

// Build 按配置创建存储、客户端、缓存和消息通道
// 插件消息通道连接失败时退回 NoopMessenger，不影响其他功能
func Build(cfg *config.Config) (*Services, error) {
	store, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}
	tokens := credentials.NewTokenStore(store)

	client := apiclient.New(cfg.API.BaseURL, tokens,
		apiclient.WithTimeout(cfg.RequestTimeout()),
		apiclient.WithUserAgent(cfg.API.UserAgent),
	)

	cache := querycache.New(querycache.Options{
		StaleTime:    config.GetDuration(cfg.Cache.StaleTime, constants.DefaultStaleTime),
		FetchTimeout: config.GetDuration(cfg.Cache.FetchTimeout, constants.DefaultFetchTimeout),
		RetryBackoff: config.GetDuration(cfg.Cache.RetryBackoff, constants.DefaultRetryBackoff),
		Policy:       querycache.Policy{MaxRetries: cfg.Cache.MaxRetries},
	})

	messenger, err := messaging.New(cfg.Extension)
	if err != nil {
		logger.Warn().Err(err).Msg("插件消息通道不可用，自动申请只打开链接")
		messenger = messaging.NoopMessenger{}
	}

	return New(Deps{
		Config:    cfg,
		Client:    client,
		Cache:     cache,
		Store:     store,
		Tokens:    tokens,
		Messenger: messenger,
	}), nil
}
