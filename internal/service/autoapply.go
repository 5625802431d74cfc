package service

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/messaging"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/storage"
)

// LinkOpener 在浏览器中打开链接
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}

// BrowserOpener 调用系统默认浏览器
type BrowserOpener struct{}

func (BrowserOpener) Open(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("打开链接失败: %w", err)
	}
	// 不等待浏览器退出
	go func() { _ = cmd.Wait() }()
	return nil
}

// AutoApply 把选中的岗位交给插件并依次打开
type AutoApply struct {
	*base
	messenger messaging.Messenger
	opener    LinkOpener
	interval  time.Duration
}

// ApplyResult 自动申请的结果
type ApplyResult struct {
	Jobs   []models.JobListing
	Opened int
}

// Apply selectedIDs 至少包含一个 listings 中的岗位
// 岗位按列表顺序打开，相邻两次之间间隔 interval；ctx 结束时停止打开剩余的链接
func (a *AutoApply) Apply(ctx context.Context, listings []models.JobListing, selectedIDs []string) (ApplyResult, error) {
	jobs := selectJobs(listings, selectedIDs)
	if len(jobs) == 0 {
		return ApplyResult{}, ErrNoJobsSelected
	}

	if err := storage.SetJSON(ctx, a.store, constants.KeyAutoApplyJobs, jobs); err != nil {
		return ApplyResult{}, err
	}

	// 插件不可用时仍然打开链接
	msg := models.ExtensionMessage{Action: messaging.ActionAutoApplyJobs, Jobs: jobs}
	if err := a.messenger.Send(ctx, msg); err != nil {
		a.logger.Warn().Err(err).Msg("通知插件失败")
	}

	result := ApplyResult{Jobs: jobs}
	for i, job := range jobs {
		if i > 0 {
			if err := sleep(ctx, a.interval); err != nil {
				return result, err
			}
		}
		if err := a.opener.Open(ctx, job.URL); err != nil {
			a.logger.Warn().Err(err).Str("url", job.URL).Msg("打开岗位链接失败")
			continue
		}
		result.Opened++
	}
	a.logger.Info().Int("selected", len(jobs)).Int("opened", result.Opened).Msg("自动申请已启动")
	return result, nil
}

// OpenURLs 立即打开选中的岗位链接(链接页的 "Autofill Selected")
func (a *AutoApply) OpenURLs(ctx context.Context, urls []string) (int, error) {
	if len(urls) == 0 {
		return 0, ErrNoURLsSelected
	}
	opened := 0
	for _, u := range urls {
		if err := a.opener.Open(ctx, u); err != nil {
			a.logger.Warn().Err(err).Str("url", u).Msg("打开岗位链接失败")
			continue
		}
		opened++
	}
	return opened, nil
}

// Pending 最近一次交给插件的岗位
func (a *AutoApply) Pending(ctx context.Context) ([]models.JobListing, error) {
	var jobs []models.JobListing
	if err := storage.GetJSON(ctx, a.store, constants.KeyAutoApplyJobs, &jobs); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []models.JobListing{}, nil
		}
		return nil, err
	}
	return jobs, nil
}

func selectJobs(listings []models.JobListing, ids []string) []models.JobListing {
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	var jobs []models.JobListing
	for _, job := range listings {
		if _, ok := selected[job.ID]; ok {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
