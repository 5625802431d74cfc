package constants

import (
	"net/url"
	"time"
)

const (
	// 本地持久化存储中的固定键，与网页版保持一致，便于迁移已有数据
	KeyToken          = "jwt_token"
	KeyUserEmail      = "user_email"
	KeySettings       = "jobflow-settings"
	KeyDiscoveredJobs = "discoveredJobs"
	KeyAutoApplyJobs  = "autoApplyJobs"

	// DefaultStaleTime 查询结果的新鲜期
	DefaultStaleTime = 5 * time.Minute
	// DefaultFetchTimeout 共享查询的最长执行时间
	DefaultFetchTimeout = 60 * time.Second
	// DefaultRetryBackoff 首次重试的等待时间
	DefaultRetryBackoff = time.Second
	// DefaultMaxRetries 非4xx失败时的最大重试次数
	DefaultMaxRetries = 2
	// DefaultDiscoveryTimeout 岗位发现请求的超时
	DefaultDiscoveryTimeout = 30 * time.Second
	// DefaultOpenInterval 自动申请时依次打开链接的间隔
	DefaultOpenInterval = time.Second
	// DefaultUploadMaxSizeMB 简历文件大小上限(MB)
	DefaultUploadMaxSizeMB = 5
)

// 后端API路径，同时作为查询缓存的键
const (
	PathSignup          = "/api/auth/signup"
	PathLogin           = "/api/auth/login"
	PathUserPreferences = "/api/user-preferences"
	PathUserProfile     = "/api/user/profile"
	PathUserProfileAI   = "/api/user/profile/ai"
	PathJobURLs         = "/api/job-urls"
	PathApplications    = "/api/applications"
	PathStats           = "/api/stats"
	PathJobsDiscover    = "/api/jobs/discover"
	PathUploadPresign   = "/api/upload/presign"
	PathUploadConfirm   = "/api/upload/confirm"
	PathUploadProxy     = "/api/upload/proxy"
)

// JobURLPath 单条岗位链接的路径，id 按路径段转义
func JobURLPath(id string) string {
	return PathJobURLs + "/" + url.PathEscape(id)
}
