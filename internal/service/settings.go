package service

import (
	"context"
	"errors"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/storage"
	"jobflow-dashboard/internal/validation"
)

// Settings 本地设置，不与后端同步
type Settings struct {
	*base
	defaultEndpoint string
}

// Load 没有保存过时返回默认设置
func (s *Settings) Load(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := storage.GetJSON(ctx, s.store, constants.KeySettings, &settings)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultSettings(s.defaultEndpoint + constants.PathUserPreferences), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// Save 校验后整体覆盖
func (s *Settings) Save(ctx context.Context, form validation.SettingsForm) (models.Settings, error) {
	if err := validation.Validate(form); err != nil {
		return models.Settings{}, err
	}
	settings := form.Settings()
	if err := storage.SetJSON(ctx, s.store, constants.KeySettings, settings); err != nil {
		return models.Settings{}, err
	}
	s.logger.Info().Msg("设置已保存")
	return settings, nil
}

// ClearAll 清空本地存储的全部数据(包括登录状态)和查询缓存
func (s *Settings) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.cache.Clear()
	s.logger.Warn().Msg("本地数据已全部清除")
	return nil
}
