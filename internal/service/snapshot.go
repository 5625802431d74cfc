package service

import (
	"context"
	"time"

	"jobflow-dashboard/internal/export"
)

// Snapshot 汇总导出所需的数据
// 统计接口失败时只记录日志，链接和申请记录失败时返回错误
func (s *Services) Snapshot(ctx context.Context) (export.Data, error) {
	urls, err := s.JobURLs.List(ctx)
	if err != nil {
		return export.Data{}, err
	}
	apps, err := s.Applications.List(ctx)
	if err != nil {
		return export.Data{}, err
	}

	data := export.Data{
		ExportedAt:   time.Now().UTC(),
		JobURLs:      urls,
		Applications: apps,
	}
	if stats, err := s.Stats.Get(ctx); err == nil {
		data.Stats = &stats
	} else {
		s.Stats.logger.Warn().Err(err).Msg("导出时读取统计失败")
	}
	if email, err := s.deps.Tokens.Email(ctx); err == nil {
		data.Email = email
	}
	return data, nil
}
