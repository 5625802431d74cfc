// Package views 列表和卡片的视图模型，命令行和本地看板共用
package views

import (
	"strings"

	"jobflow-dashboard/internal/models"
)

// FilterJobURLs 按关键字(公司、标题、链接，不区分大小写)和状态过滤
// query 和 status 为空时不过滤
func FilterJobURLs(urls []models.JobURL, query, status string) []models.JobURL {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.JobURL, 0, len(urls))
	for _, u := range urls {
		if status != "" && string(u.Status) != status {
			continue
		}
		if q != "" && !containsAny(q, u.Company, u.Title, u.URL) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FilterApplications 按关键字(公司、职位)和状态过滤
func FilterApplications(apps []models.Application, query, status string) []models.Application {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Application, 0, len(apps))
	for _, a := range apps {
		if status != "" && string(a.Status) != status {
			continue
		}
		if q != "" && !containsAny(q, a.Company, a.Position) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Recent 最近的 n 条申请，保持后端返回的顺序
func Recent(apps []models.Application, n int) []models.Application {
	if len(apps) <= n {
		return apps
	}
	return apps[:n]
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
