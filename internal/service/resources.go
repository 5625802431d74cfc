package service

import (
	"context"
	"net/http"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/querycache"
	"jobflow-dashboard/internal/validation"
)

// Applications 申请记录
type Applications struct {
	*base
}

// List GET /api/applications
func (a *Applications) List(ctx context.Context) ([]models.Application, error) {
	return query[[]models.Application](ctx, a.base, constants.PathApplications, apiclient.Throw)
}

// JobURLs 保存的岗位链接
type JobURLs struct {
	*base
}

// List GET /api/job-urls
func (j *JobURLs) List(ctx context.Context) ([]models.JobURL, error) {
	return query[[]models.JobURL](ctx, j.base, constants.PathJobURLs, apiclient.Throw)
}

// Add 校验后提交，成功后链接列表和统计都需要刷新
func (j *JobURLs) Add(ctx context.Context, form validation.AddJobURLForm) (models.JobURL, error) {
	if err := validation.Validate(form); err != nil {
		return models.JobURL{}, err
	}
	created, err := mutate[models.JobURL](ctx, j.base, http.MethodPost, constants.PathJobURLs, form,
		constants.PathJobURLs, constants.PathStats)
	if err != nil {
		return models.JobURL{}, err
	}
	j.logger.Info().Str("id", created.ID).Msg("已添加岗位链接")
	return created, nil
}

// Delete DELETE /api/job-urls/:id
func (j *JobURLs) Delete(ctx context.Context, id string) error {
	return mutateNoContent(ctx, j.base, http.MethodDelete, constants.JobURLPath(id), nil,
		constants.PathJobURLs, constants.PathStats)
}

// Preferences 求职偏好
type Preferences struct {
	*base
}

// Get 未登录(401)时返回 nil
func (p *Preferences) Get(ctx context.Context) (*models.UserPreferences, error) {
	return query[*models.UserPreferences](ctx, p.base, constants.PathUserPreferences, apiclient.ReturnNull)
}

// Save PUT /api/user-preferences
func (p *Preferences) Save(ctx context.Context, form validation.PreferencesForm) (models.UserPreferences, error) {
	if err := validation.Validate(form); err != nil {
		return models.UserPreferences{}, err
	}
	prefs := form.Preferences()
	if err := mutateNoContent(ctx, p.base, http.MethodPut, constants.PathUserPreferences, prefs,
		constants.PathUserPreferences); err != nil {
		return models.UserPreferences{}, err
	}
	return prefs, nil
}

// Stats 看板统计
type Stats struct {
	*base
}

func (s *Stats) Get(ctx context.Context) (models.Stats, error) {
	return query[models.Stats](ctx, s.base, constants.PathStats, apiclient.Throw)
}

// Profile 职业档案
type Profile struct {
	*base
}

type profileEnvelope struct {
	Profile *models.UserProfile `json:"profile"`
}

// Get 档案尚未创建(404)时返回 nil
func (p *Profile) Get(ctx context.Context) (*models.UserProfile, error) {
	if err := p.requireToken(ctx); err != nil {
		return nil, err
	}
	env, err := querycache.Fetch(ctx, p.cache, constants.PathUserProfile, func(ctx context.Context) (profileEnvelope, error) {
		var env profileEnvelope
		data, err := p.client.Query(ctx, constants.PathUserProfile, apiclient.Throw)
		if apiclient.IsNotFound(err) {
			return env, nil
		}
		if err != nil {
			return env, err
		}
		return env, apiclient.Unmarshal(data, &env)
	})
	if err != nil {
		return nil, err
	}
	return env.Profile, nil
}

// Save POST /api/user/profile，返回后端保存后的档案
func (p *Profile) Save(ctx context.Context, form validation.ProfileForm) (*models.UserProfile, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}
	if err := p.requireToken(ctx); err != nil {
		return nil, err
	}
	profile := form.Profile()
	env, err := mutate[profileEnvelope](ctx, p.base, http.MethodPost, constants.PathUserProfile, profile,
		constants.PathUserProfile, constants.PathUserProfileAI)
	if err != nil {
		return nil, err
	}
	p.logger.Info().Msg("档案已保存")
	if env.Profile == nil {
		return &profile, nil
	}
	return env.Profile, nil
}

// ForAI 自动填表使用的档案，任何失败都返回 nil
func (p *Profile) ForAI(ctx context.Context) *models.UserProfile {
	if ok, err := p.tokens.HasToken(ctx); err != nil || !ok {
		return nil
	}
	env, err := query[profileEnvelope](ctx, p.base, constants.PathUserProfileAI, apiclient.Throw)
	if err != nil {
		p.logger.Warn().Err(err).Msg("获取AI档案失败")
		return nil
	}
	return env.Profile
}
