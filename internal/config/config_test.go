package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobflow-dashboard/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig 在临时目录中写入配置文件并返回路径
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644), "无法写入临时配置文件")
	return configPath
}

// TestLoadConfigFromFile 验证 YAML 中的字段能被正确加载，未给出的字段保留默认值
func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("JOBFLOW_API_URL", "")
	t.Setenv("VITE_API_URL", "")

	configPath := writeConfig(t, `
api:
  base_url: "https://api.example.com/"
cache:
  stale_time: "2m"
store:
  driver: redis
upload:
  max_size_mb: 8
`)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL, "结尾的 / 应被去除")
	assert.Equal(t, "2m", cfg.Cache.StaleTime)
	assert.Equal(t, 2, cfg.Cache.MaxRetries, "未配置的字段应保留默认值")
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, int64(8*1024*1024), cfg.UploadMaxBytes())
	assert.Len(t, cfg.Upload.AllowedTypes, 3)
}

// TestLoadConfigEnvOverride 验证环境变量优先于配置文件
func TestLoadConfigEnvOverride(t *testing.T) {
	configPath := writeConfig(t, `
api:
  base_url: "https://from-file.example.com"
`)

	t.Setenv("JOBFLOW_API_URL", "")
	t.Setenv("VITE_API_URL", "https://from-vite.example.com")
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://from-vite.example.com", cfg.API.BaseURL)

	t.Setenv("JOBFLOW_API_URL", "https://from-env.example.com")
	cfg, err = LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.com", cfg.API.BaseURL, "JOBFLOW_API_URL 优先于 VITE_API_URL")
}

// TestLoadConfigFallsBackToDefault 空的 base_url 回退到硬编码默认值
func TestLoadConfigFallsBackToDefault(t *testing.T) {
	t.Setenv("JOBFLOW_API_URL", "")
	t.Setenv("VITE_API_URL", "")

	configPath := writeConfig(t, `
api:
  base_url: ""
logger:
  level: debug
`)
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "api: [unclosed")
	_, err := LoadConfig(configPath)
	require.Error(t, err)
}

func TestCreateSampleConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "30s", cfg.Discovery.Timeout)

	err = CreateSampleConfig(path)
	require.Error(t, err, "已存在的文件不应被覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, GetDuration("", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, GetDuration("bogus", 5*time.Minute))
	assert.Equal(t, 90*time.Second, GetDuration("90s", 5*time.Minute))
}

func TestDefaultsFollowConstants(t *testing.T) {
	cfg := Default()
	assert.Equal(t, constants.DefaultStaleTime, GetDuration(cfg.Cache.StaleTime, 0))
	assert.Equal(t, constants.DefaultFetchTimeout, GetDuration(cfg.Cache.FetchTimeout, 0))
	assert.Equal(t, constants.DefaultRetryBackoff, GetDuration(cfg.Cache.RetryBackoff, 0))
	assert.Equal(t, constants.DefaultMaxRetries, cfg.Cache.MaxRetries)
	assert.Equal(t, constants.DefaultDiscoveryTimeout, GetDuration(cfg.Discovery.Timeout, 0))
	assert.Equal(t, constants.DefaultOpenInterval, GetDuration(cfg.Discovery.OpenInterval, 0))
	assert.Equal(t, int64(5*1024*1024), cfg.UploadMaxBytes())
}
