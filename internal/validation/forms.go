package validation

import (
	"strings"

	"jobflow-dashboard/internal/models"
)

// LoginForm 登录和注册共用
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (f LoginForm) Credentials() models.Credentials {
	return models.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// JobSearchForm 岗位发现条件
type JobSearchForm struct {
	Title       string `json:"title" validate:"required"`
	Location    string `json:"location" validate:"required"`
	PostedAfter string `json:"postedAfter" validate:"required,oneof=1 3 7 30"`
	Remote      bool   `json:"remote"`
}

func (f JobSearchForm) Messages() map[string]string {
	return map[string]string{
		"title.required":       "Job title is required",
		"location.required":    "Location is required",
		"postedAfter.required": "Posted date is required",
		"postedAfter.oneof":    "Posted date must be 1, 3, 7 or 30 days",
	}
}

// DefaultJobSearchForm 表单初始值
func DefaultJobSearchForm() JobSearchForm {
	return JobSearchForm{PostedAfter: "7"}
}

func (f JobSearchForm) Request() models.DiscoverRequest {
	return models.DiscoverRequest{
		Title:       strings.TrimSpace(f.Title),
		Location:    strings.TrimSpace(f.Location),
		PostedAfter: f.PostedAfter,
		Remote:      f.Remote,
	}
}

// AddJobURLForm 添加岗位链接
type AddJobURLForm struct {
	URL      string `json:"url" validate:"required,url"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
	Location string `json:"location,omitempty"`
	Status   string `json:"status" validate:"required,oneof=pending applied interviewed rejected"`
}

func (f AddJobURLForm) Messages() map[string]string {
	return map[string]string{
		"url.required": "URL is required",
		"url.url":      "Please enter a valid URL",
	}
}

// PreferencesForm 求职偏好，三项都可以为空
type PreferencesForm struct {
	Qualifications string `json:"qualifications" validate:"max=10000"`
	WorkExperience string `json:"workExperience" validate:"max=10000"`
	JobPreferences string `json:"jobPreferences" validate:"max=10000"`
}

func (f PreferencesForm) Preferences() models.UserPreferences {
	return models.UserPreferences{
		Qualifications: f.Qualifications,
		WorkExperience: f.WorkExperience,
		JobPreferences: f.JobPreferences,
	}
}

// ProfileForm 职业档案
// 列表字段(技能、经历等)不做校验，原样提交
type ProfileForm struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone,omitempty"`
	Location          string `json:"location" validate:"required"`
	Experience        string `json:"experience" validate:"required"`
	Education         string `json:"education" validate:"required"`
	Summary           string `json:"summary" validate:"min=10"`
	Availability      string `json:"availability" validate:"required"`
	SalaryExpectation string `json:"salary_expectation,omitempty"`
	RemotePreference  bool   `json:"remote_preference"`
	LinkedinURL       string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	GithubURL         string `json:"github_url,omitempty" validate:"omitempty,url"`
	PortfolioURL      string `json:"portfolio_url,omitempty" validate:"omitempty,url"`

	Skills         []string                 `json:"skills"`
	WorkHistory    []models.WorkHistoryItem `json:"work_history"`
	Languages      []string                 `json:"languages"`
	Certifications []string                 `json:"certifications"`
}

func (f ProfileForm) Messages() map[string]string {
	return map[string]string{
		"name.required":         "Name is required",
		"email":                 "Valid email is required",
		"location.required":     "Location is required",
		"experience.required":   "Experience level is required",
		"education.required":    "Education is required",
		"summary.min":           "Professional summary must be at least 10 characters",
		"availability.required": "Availability is required",
	}
}

// ProfileFormFrom 用已有档案填充表单
func ProfileFormFrom(p models.UserProfile) ProfileForm {
	return ProfileForm{
		Name:              p.Name,
		Email:             p.Email,
		Phone:             p.Phone,
		Location:          p.Location,
		Experience:        p.Experience,
		Education:         p.Education,
		Summary:           p.Summary,
		Availability:      p.Availability,
		SalaryExpectation: p.SalaryExpectation,
		RemotePreference:  p.RemotePreference,
		LinkedinURL:       p.LinkedinURL,
		GithubURL:         p.GithubURL,
		PortfolioURL:      p.PortfolioURL,
		Skills:            p.Skills,
		WorkHistory:       p.WorkHistory,
		Languages:         p.Languages,
		Certifications:    p.Certifications,
	}
}

// Profile 转换为提交给后端的档案，空列表输出为 []
func (f ProfileForm) Profile() models.UserProfile {
	return models.UserProfile{
		Name:              strings.TrimSpace(f.Name),
		Email:             strings.TrimSpace(f.Email),
		Phone:             f.Phone,
		Location:          f.Location,
		Experience:        f.Experience,
		Education:         f.Education,
		Summary:           f.Summary,
		Skills:            nonNil(f.Skills),
		WorkHistory:       nonNilHistory(f.WorkHistory),
		Availability:      f.Availability,
		SalaryExpectation: f.SalaryExpectation,
		RemotePreference:  f.RemotePreference,
		Languages:         nonNil(f.Languages),
		Certifications:    nonNil(f.Certifications),
		LinkedinURL:       f.LinkedinURL,
		GithubURL:         f.GithubURL,
		PortfolioURL:      f.PortfolioURL,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilHistory(h []models.WorkHistoryItem) []models.WorkHistoryItem {
	if h == nil {
		return []models.WorkHistoryItem{}
	}
	return h
}

// SettingsForm 本地设置
type SettingsForm struct {
	APIEndpoint   string `json:"apiEndpoint" validate:"required,url"`
	SyncFrequency string `json:"syncFrequency" validate:"required,oneof=realtime 5min 15min 1hour manual"`
	AutoSubmit    bool   `json:"autoSubmit"`
	Confirmations bool   `json:"confirmations"`
	ActionDelay   int    `json:"actionDelay" validate:"min=1,max=30"`
	LocalBackup   bool   `json:"localBackup"`
}

func (f SettingsForm) Messages() map[string]string {
	return map[string]string{
		"actionDelay": "Action delay must be between 1 and 30 seconds",
	}
}

func SettingsFormFrom(s models.Settings) SettingsForm {
	return SettingsForm(s)
}

func (f SettingsForm) Settings() models.Settings {
	return models.Settings(f)
}
