package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/storage"
	"jobflow-dashboard/internal/validation"
)

// Discovery 岗位发现
type Discovery struct {
	*base
	timeout time.Duration
}

// Search 按条件搜索岗位，结果保存在本地存储供岗位列表使用
// 任何失败都会删除上一次保存的结果
func (d *Discovery) Search(ctx context.Context, form validation.JobSearchForm) (*models.DiscoverResponse, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var resp models.DiscoverResponse
	err := d.client.Do(ctx, http.MethodPost, constants.PathJobsDiscover, form.Request(), &resp)
	if err != nil {
		if rmErr := d.store.Remove(context.WithoutCancel(ctx), constants.KeyDiscoveredJobs); rmErr != nil {
			d.logger.Warn().Err(rmErr).Msg("删除旧的发现结果失败")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			d.logger.Warn().Dur("timeout", d.timeout).Msg("岗位发现超时")
			return nil, ErrDiscoveryTimeout
		}
		return nil, err
	}

	if resp.Jobs == nil {
		resp.Jobs = []models.JobListing{}
	}
	if err := storage.SetJSON(ctx, d.store, constants.KeyDiscoveredJobs, resp.Jobs); err != nil {
		return nil, err
	}
	d.logger.Info().Int("count", resp.Count).Str("title", form.Title).Msg("岗位发现完成")
	return &resp, nil
}

// Stored 上一次发现的岗位，没有时返回空列表
func (d *Discovery) Stored(ctx context.Context) ([]models.JobListing, error) {
	var jobs []models.JobListing
	err := storage.GetJSON(ctx, d.store, constants.KeyDiscoveredJobs, &jobs)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.JobListing{}, nil
	}
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
