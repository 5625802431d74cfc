// Package models 后端API的数据结构
// 字段名与后端 JSON 保持一致：档案使用 snake_case，其余资源使用 camelCase
package models

import (
	"fmt"
	"strings"
	"time"
)

// JobURLStatus 岗位链接的处理状态
type JobURLStatus string

const (
	JobURLPending     JobURLStatus = "pending"
	JobURLApplied     JobURLStatus = "applied"
	JobURLInterviewed JobURLStatus = "interviewed"
	JobURLRejected    JobURLStatus = "rejected"
)

// JobURLStatuses 全部合法状态，按界面展示顺序
var JobURLStatuses = []JobURLStatus{JobURLPending, JobURLApplied, JobURLInterviewed, JobURLRejected}

// ParseJobURLStatus 解析状态，未知值返回错误
func ParseJobURLStatus(s string) (JobURLStatus, error) {
	for _, st := range JobURLStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("未知的岗位链接状态: %q", s)
}

// ApplicationStatus 申请记录状态
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationAccepted  ApplicationStatus = "accepted"
)

var ApplicationStatuses = []ApplicationStatus{ApplicationPending, ApplicationInterview, ApplicationRejected, ApplicationAccepted}

// ParseApplicationStatus 解析状态，未知值返回错误
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("未知的申请状态: %q", s)
}

// Label 首字母大写的展示文本
func (s ApplicationStatus) Label() string {
	return capitalize(string(s))
}

func (s JobURLStatus) Label() string {
	return capitalize(string(s))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// JobURL 用户保存的岗位链接
type JobURL struct {
	ID        string       `json:"id"`
	URL       string       `json:"url"`
	Title     string       `json:"title,omitempty"`
	Company   string       `json:"company,omitempty"`
	Position  string       `json:"position,omitempty"`
	Location  string       `json:"location,omitempty"`
	Status    JobURLStatus `json:"status"`
	CreatedAt string       `json:"createdAt"`
	UserID    string       `json:"userId"`
}

// Created 解析创建时间，格式无法识别时返回 false
func (j JobURL) Created() (time.Time, bool) {
	return ParseTime(j.CreatedAt)
}

// Application 申请记录
type Application struct {
	ID          string            `json:"id"`
	Company     string            `json:"company,omitempty"`
	Position    string            `json:"position,omitempty"`
	Location    string            `json:"location,omitempty"`
	AppliedDate string            `json:"appliedDate"`
	Status      ApplicationStatus `json:"status"`
	LastUpdate  string            `json:"lastUpdate,omitempty"`
	JobType     string            `json:"jobType,omitempty"`
	WorkType    string            `json:"workType,omitempty"`
}

func (a Application) Applied() (time.Time, bool) {
	return ParseTime(a.AppliedDate)
}

// UserPreferences 求职偏好，三段自由文本
type UserPreferences struct {
	Qualifications string `json:"qualifications"`
	WorkExperience string `json:"workExperience"`
	JobPreferences string `json:"jobPreferences"`
}

// WorkHistoryItem 工作经历
type WorkHistoryItem struct {
	ID          string `json:"id" yaml:"id"`
	JobTitle    string `json:"job_title" yaml:"job_title"`
	Company     string `json:"company" yaml:"company"`
	Duration    string `json:"duration" yaml:"duration"`
	Location    string `json:"location" yaml:"location"`
	Description string `json:"description" yaml:"description"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	IsCurrent   bool   `json:"is_current" yaml:"is_current"`
}

// UserProfile 职业档案，同时用于 AI 自动填表
type UserProfile struct {
	ID                string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name              string            `json:"name" yaml:"name"`
	Email             string            `json:"email" yaml:"email"`
	Phone             string            `json:"phone,omitempty" yaml:"phone,omitempty"`
	Location          string            `json:"location" yaml:"location"`
	Experience        string            `json:"experience" yaml:"experience"`
	Education         string            `json:"education" yaml:"education"`
	Summary           string            `json:"summary" yaml:"summary"`
	Skills            []string          `json:"skills" yaml:"skills"`
	WorkHistory       []WorkHistoryItem `json:"work_history" yaml:"work_history"`
	Availability      string            `json:"availability" yaml:"availability"`
	SalaryExpectation string            `json:"salary_expectation,omitempty" yaml:"salary_expectation,omitempty"`
	RemotePreference  bool              `json:"remote_preference" yaml:"remote_preference"`
	Languages         []string          `json:"languages" yaml:"languages"`
	Certifications    []string          `json:"certifications" yaml:"certifications"`
	LinkedinURL       string            `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
	GithubURL         string            `json:"github_url,omitempty" yaml:"github_url,omitempty"`
	PortfolioURL      string            `json:"portfolio_url,omitempty" yaml:"portfolio_url,omitempty"`
	CreatedAt         string            `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt         string            `json:"updated_at,omitempty" yaml:"-"`
}

// JobListing 岗位发现返回的职位
type JobListing struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	URL        string `json:"url"`
	Source     string `json:"source"`
	PostedDate string `json:"postedDate"`
	Salary     string `json:"salary,omitempty"`
	Experience string `json:"experience,omitempty"`
}

// DiscoverRequest 岗位发现请求
type DiscoverRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	PostedAfter string `json:"postedAfter"` // 天数："1" "3" "7" "30"
	Remote      bool   `json:"remote"`
}

// DiscoverResponse 岗位发现响应
type DiscoverResponse struct {
	Jobs  []JobListing `json:"jobs"`
	Count int          `json:"count"`
}

// Stats 看板统计
type Stats struct {
	TotalApplications int     `json:"totalApplications"`
	PendingURLs       int     `json:"pendingUrls"`
	Interviews        int     `json:"interviews"`
	SuccessRate       float64 `json:"successRate"`
}

// UploadResult 简历上传完成后的结果
type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

// PresignRequest 申请预签名上传地址
type PresignRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	FileID    string `json:"fileId"`
}

type ConfirmRequest struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

// Credentials 登录和注册请求体
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse 登录和注册的响应
type AuthResponse struct {
	Token string `json:"token"`
	User  struct {
		Email string `json:"email"`
	} `json:"user"`
}

// Settings 本地设置，整体保存在 jobflow-settings 键下
type Settings struct {
	APIEndpoint   string `json:"apiEndpoint"`
	SyncFrequency string `json:"syncFrequency"`
	AutoSubmit    bool   `json:"autoSubmit"`
	Confirmations bool   `json:"confirmations"`
	ActionDelay   int    `json:"actionDelay"`
	LocalBackup   bool   `json:"localBackup"`
}

// SyncFrequencies 可选的同步频率
var SyncFrequencies = []string{"realtime", "5min", "15min", "1hour", "manual"}

// DefaultSettings 首次使用时的设置
func DefaultSettings(apiEndpoint string) Settings {
	return Settings{
		APIEndpoint:   apiEndpoint,
		SyncFrequency: "15min",
		AutoSubmit:    false,
		Confirmations: true,
		ActionDelay:   3,
		LocalBackup:   true,
	}
}

// ExtensionMessage 发送给浏览器插件的消息
type ExtensionMessage struct {
	Action string       `json:"action"`
	Jobs   []JobListing `json:"jobs"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime 解析后端返回的日期字符串
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
