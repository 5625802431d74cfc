package querycache

import (
	"context"
	"errors"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/constants"
)

// Policy 查询失败后的重试策略
type Policy struct {
	// MaxRetries 首次请求之外最多再尝试的次数
	MaxRetries int
}

// DefaultPolicy 非4xx失败最多重试2次
var DefaultPolicy = Policy{MaxRetries: constants.DefaultMaxRetries}

// Retryable 判断错误本身是否值得重试
//
//	4xx              -> 否，重试不会改变结果
//	其他非2xx(3xx/5xx) -> 是
//	网络错误          -> 是
//	调用方取消        -> 否
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if status, ok := apiclient.StatusOf(err); ok {
		return status < 400 || status >= 500
	}
	return true
}

// ShouldRetry failureCount 为已失败的次数(从1开始)
func (p Policy) ShouldRetry(failureCount int, err error) bool {
	if !Retryable(err) {
		return false
	}
	return failureCount <= p.MaxRetries
}
