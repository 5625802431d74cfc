package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/export"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/service"
	"jobflow-dashboard/internal/shell"
	"jobflow-dashboard/internal/validation"
	"jobflow-dashboard/internal/views"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type appRow struct {
	Company, Position, Location string
	Applied, LastUpdate         string
	Status, Tone                string
}

func applicationRows(apps []models.Application) []appRow {
	rows := make([]appRow, 0, len(apps))
	for _, a := range apps {
		location := a.Location
		if location == "" {
			location = "Not specified"
		}
		rows = append(rows, appRow{
			Company:    a.Company,
			Position:   a.Position,
			Location:   location,
			Applied:    views.FormatDate(a.AppliedDate),
			LastUpdate: views.FormatDate(a.LastUpdate),
			Status:     a.Status.Label(),
			Tone:       views.StatusTone(string(a.Status)),
		})
	}
	return rows
}

type dashboardData struct {
	Cards       []views.Card
	StatsErr    string
	Recent      []appRow
	RecentErr   string
	Preferences models.UserPreferences
	Search      validation.JobSearchForm
	PostedAfter []string
}

func (s *Server) dashboardPage(c context.Context, ctx *app.RequestContext) {
	data := dashboardData{
		Search:      validation.DefaultJobSearchForm(),
		PostedAfter: []string{"1", "3", "7", "30"},
	}

	stats := views.Load(c, s.svc.Stats.Get)
	if stats.OK() {
		data.Cards = views.StatsCards(&stats.Data)
	} else {
		data.StatsErr = stats.Message()
	}

	apps := views.Load(c, s.svc.Applications.List)
	if apps.OK() {
		data.Recent = applicationRows(views.Recent(apps.Data, 3))
	} else {
		data.RecentErr = apps.Message()
	}

	if prefs, err := s.svc.Preferences.Get(c); err == nil && prefs != nil {
		data.Preferences = *prefs
	}

	s.render(ctx, consts.StatusOK, "dashboard", s.newPage(c, ctx, "Dashboard", data))
}

type urlRow struct {
	ID, URL, Display    string
	Company, Title      string
	Status, Tone, Added string
}

type urlsData struct {
	Query    string
	Status   string
	Statuses []models.JobURLStatus
	Rows     []urlRow
	Total    int
	Err      string
}

func (s *Server) urlsPage(c context.Context, ctx *app.RequestContext) {
	data := urlsData{
		Query:    ctx.Query("q"),
		Status:   ctx.Query("status"),
		Statuses: models.JobURLStatuses,
	}

	state := views.Load(c, s.svc.JobURLs.List)
	if !state.OK() {
		data.Err = state.Message()
	} else {
		data.Total = len(state.Data)
		for _, u := range views.FilterJobURLs(state.Data, data.Query, data.Status) {
			title := u.Title
			if title == "" {
				title = u.Position
			}
			data.Rows = append(data.Rows, urlRow{
				ID:      u.ID,
				URL:     u.URL,
				Display: views.Truncate(u.URL, views.URLDisplayLength),
				Company: u.Company,
				Title:   title,
				Status:  u.Status.Label(),
				Tone:    views.StatusTone(string(u.Status)),
				Added:   views.FormatDate(u.CreatedAt),
			})
		}
	}
	s.render(ctx, consts.StatusOK, "urls", s.newPage(c, ctx, "Job URLs", data))
}

type applicationsData struct {
	Query    string
	Status   string
	Statuses []models.ApplicationStatus
	Rows     []appRow
	Err      string
}

func (s *Server) applicationsPage(c context.Context, ctx *app.RequestContext) {
	data := applicationsData{
		Query:    ctx.Query("q"),
		Status:   ctx.Query("status"),
		Statuses: models.ApplicationStatuses,
	}
	state := views.Load(c, s.svc.Applications.List)
	if state.OK() {
		data.Rows = applicationRows(views.FilterApplications(state.Data, data.Query, data.Status))
	} else {
		data.Err = state.Message()
	}
	s.render(ctx, consts.StatusOK, "applications", s.newPage(c, ctx, "Applications", data))
}

type jobRow struct {
	ID, Title, Company, Location string
	Source, Posted, Salary, URL  string
}

func (s *Server) jobsPage(c context.Context, ctx *app.RequestContext) {
	jobs, err := s.svc.Discovery.Stored(c)
	if err != nil {
		s.renderError(c, ctx, err)
		return
	}
	now := s.now()
	rows := make([]jobRow, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, jobRow{
			ID:       j.ID,
			Title:    j.Title,
			Company:  j.Company,
			Location: j.Location,
			Source:   j.Source,
			Posted:   views.RelativeDateString(j.PostedDate, now),
			Salary:   j.Salary,
			URL:      j.URL,
		})
	}
	s.render(ctx, consts.StatusOK, "jobs", s.newPage(c, ctx, "Discovered Jobs", rows))
}

type profileData struct {
	Form           validation.ProfileForm
	Skills         string
	Languages      string
	Certifications string
	Exists         bool
	Err            string
}

func (s *Server) profilePage(c context.Context, ctx *app.RequestContext) {
	var data profileData
	profile, err := s.svc.Profile.Get(c)
	switch {
	case err != nil:
		data.Err = apiclient.UserMessage(err)
	case profile != nil:
		data.Exists = true
		data.Form = validation.ProfileFormFrom(*profile)
		data.Skills = strings.Join(profile.Skills, ", ")
		data.Languages = strings.Join(profile.Languages, ", ")
		data.Certifications = strings.Join(profile.Certifications, ", ")
	}
	s.render(ctx, consts.StatusOK, "profile", s.newPage(c, ctx, "Profile", data))
}

type cvBuilderData struct {
	Profile *models.UserProfile
	MaxMB   int64
}

func (s *Server) cvBuilderPage(c context.Context, ctx *app.RequestContext) {
	data := cvBuilderData{Profile: s.svc.Profile.ForAI(c), MaxMB: s.maxUploadMB}
	s.render(ctx, consts.StatusOK, "cvbuilder", s.newPage(c, ctx, "AI CV Builder", data))
}

type settingsData struct {
	Settings    models.Settings
	Frequencies []string
}

func (s *Server) settingsPage(c context.Context, ctx *app.RequestContext) {
	settings, err := s.svc.Settings.Load(c)
	if err != nil {
		s.renderError(c, ctx, err)
		return
	}
	data := settingsData{Settings: settings, Frequencies: models.SyncFrequencies}
	s.render(ctx, consts.StatusOK, "settings", s.newPage(c, ctx, "Settings", data))
}

func (s *Server) authPage(c context.Context, ctx *app.RequestContext) {
	s.render(ctx, consts.StatusOK, "auth", s.newPage(c, ctx, "Sign in", nil))
}

// 表单处理

func loginForm(ctx *app.RequestContext) validation.LoginForm {
	return validation.LoginForm{Email: ctx.PostForm("email"), Password: ctx.PostForm("password")}
}

func (s *Server) login(c context.Context, ctx *app.RequestContext) {
	session, err := s.svc.Auth.Login(c, loginForm(ctx))
	if err != nil {
		redirect(ctx, shell.PathAuth, Flash{Kind: "error", Message: errorMessage(err)})
		return
	}
	redirect(ctx, shell.PathDashboard, Flash{Message: "Welcome back, " + session.Email})
}

func (s *Server) signup(c context.Context, ctx *app.RequestContext) {
	session, err := s.svc.Auth.Signup(c, loginForm(ctx))
	if err != nil {
		redirect(ctx, shell.PathAuth, Flash{Kind: "error", Message: errorMessage(err)})
		return
	}
	redirect(ctx, shell.PathDashboard, Flash{Message: "Account created for " + session.Email})
}

func (s *Server) logout(c context.Context, ctx *app.RequestContext) {
	if err := s.svc.Auth.Logout(c); err != nil {
		s.renderError(c, ctx, err)
		return
	}
	redirect(ctx, shell.PathAuth, Flash{Message: "Signed out"})
}

func (s *Server) savePreferences(c context.Context, ctx *app.RequestContext) {
	form := validation.PreferencesForm{
		Qualifications: ctx.PostForm("qualifications"),
		WorkExperience: ctx.PostForm("workExperience"),
		JobPreferences: ctx.PostForm("jobPreferences"),
	}
	if _, err := s.svc.Preferences.Save(c, form); err != nil {
		s.fail(c, ctx, shell.PathDashboard, err)
		return
	}
	redirect(ctx, shell.PathDashboard, Flash{Message: "Preferences saved"})
}

func (s *Server) discover(c context.Context, ctx *app.RequestContext) {
	form := validation.JobSearchForm{
		Title:       ctx.PostForm("title"),
		Location:    ctx.PostForm("location"),
		PostedAfter: ctx.PostForm("postedAfter"),
		Remote:      checked(ctx, "remote"),
	}
	resp, err := s.svc.Discovery.Search(c, form)
	if err != nil {
		s.fail(c, ctx, shell.PathDashboard, err)
		return
	}
	redirect(ctx, shell.PathJobs, Flash{Message: fmt.Sprintf("Found %d jobs", resp.Count)})
}

func (s *Server) autoApply(c context.Context, ctx *app.RequestContext) {
	jobs, err := s.svc.Discovery.Stored(c)
	if err != nil {
		s.fail(c, ctx, shell.PathJobs, err)
		return
	}
	result, err := s.svc.AutoApply.Apply(c, jobs, formValues(ctx, "ids"))
	if err != nil {
		s.fail(c, ctx, shell.PathJobs, err)
		return
	}
	redirect(ctx, shell.PathJobs, Flash{Message: fmt.Sprintf("Auto-apply started for %d jobs", len(result.Jobs))})
}

func (s *Server) addURL(c context.Context, ctx *app.RequestContext) {
	status := ctx.PostForm("status")
	if status == "" {
		status = string(models.JobURLPending)
	}
	form := validation.AddJobURLForm{
		URL:      strings.TrimSpace(ctx.PostForm("url")),
		Company:  ctx.PostForm("company"),
		Position: ctx.PostForm("position"),
		Location: ctx.PostForm("location"),
		Status:   status,
	}
	if _, err := s.svc.JobURLs.Add(c, form); err != nil {
		s.fail(c, ctx, shell.PathURLs, err)
		return
	}
	redirect(ctx, shell.PathURLs, Flash{Message: "Job URL added successfully"})
}

func (s *Server) deleteURL(c context.Context, ctx *app.RequestContext) {
	if err := s.svc.JobURLs.Delete(c, ctx.Param("id")); err != nil {
		s.fail(c, ctx, shell.PathURLs, err)
		return
	}
	redirect(ctx, shell.PathURLs, Flash{Message: "Job URL deleted"})
}

func (s *Server) autofillURLs(c context.Context, ctx *app.RequestContext) {
	opened, err := s.svc.AutoApply.OpenURLs(c, formValues(ctx, "urls"))
	if err != nil {
		s.fail(c, ctx, shell.PathURLs, err)
		return
	}
	redirect(ctx, shell.PathURLs, Flash{Message: fmt.Sprintf("Opened %d URLs", opened)})
}

func (s *Server) saveProfile(c context.Context, ctx *app.RequestContext) {
	form := validation.ProfileForm{
		Name:              ctx.PostForm("name"),
		Email:             ctx.PostForm("email"),
		Phone:             ctx.PostForm("phone"),
		Location:          ctx.PostForm("location"),
		Experience:        ctx.PostForm("experience"),
		Education:         ctx.PostForm("education"),
		Summary:           ctx.PostForm("summary"),
		Availability:      ctx.PostForm("availability"),
		SalaryExpectation: ctx.PostForm("salary_expectation"),
		RemotePreference:  checked(ctx, "remote_preference"),
		LinkedinURL:       ctx.PostForm("linkedin_url"),
		GithubURL:         ctx.PostForm("github_url"),
		PortfolioURL:      ctx.PostForm("portfolio_url"),
		Skills:            splitList(ctx.PostForm("skills")),
		Languages:         splitList(ctx.PostForm("languages")),
		Certifications:    splitList(ctx.PostForm("certifications")),
	}
	// 页面上不编辑工作经历，保留已有的
	if existing, err := s.svc.Profile.Get(c); err == nil && existing != nil {
		form.WorkHistory = existing.WorkHistory
	}
	if _, err := s.svc.Profile.Save(c, form); err != nil {
		s.fail(c, ctx, shell.PathProfile, err)
		return
	}
	redirect(ctx, shell.PathProfile, Flash{Message: "Profile saved"})
}

func (s *Server) uploadResume(c context.Context, ctx *app.RequestContext) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		redirect(ctx, shell.PathCVBuilder, Flash{Kind: "error", Message: "Please choose a file to upload"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, ctx, shell.PathCVBuilder, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, ctx, shell.PathCVBuilder, err)
		return
	}
	result, err := s.svc.Uploads.Upload(c, service.File{
		Name:    fh.Filename,
		Content: content,
		Type:    fh.Header.Get("Content-Type"),
	})
	if err != nil {
		s.fail(c, ctx, shell.PathCVBuilder, err)
		return
	}
	redirect(ctx, shell.PathCVBuilder, Flash{Message: "Uploaded " + result.FileName})
}

func (s *Server) saveSettings(c context.Context, ctx *app.RequestContext) {
	delay, err := strconv.Atoi(ctx.PostForm("actionDelay"))
	if err != nil {
		delay = 0
	}
	form := validation.SettingsForm{
		APIEndpoint:   strings.TrimSpace(ctx.PostForm("apiEndpoint")),
		SyncFrequency: ctx.PostForm("syncFrequency"),
		AutoSubmit:    checked(ctx, "autoSubmit"),
		Confirmations: checked(ctx, "confirmations"),
		ActionDelay:   delay,
		LocalBackup:   checked(ctx, "localBackup"),
	}
	if _, err := s.svc.Settings.Save(c, form); err != nil {
		s.fail(c, ctx, shell.PathSettings, err)
		return
	}
	redirect(ctx, shell.PathSettings, Flash{Message: "Settings saved"})
}

func (s *Server) clearData(c context.Context, ctx *app.RequestContext) {
	if err := s.svc.Settings.ClearAll(c); err != nil {
		s.fail(c, ctx, shell.PathSettings, err)
		return
	}
	// 令牌也被清除，回到登录页
	redirect(ctx, shell.PathAuth, Flash{Message: "All local data cleared"})
}

func (s *Server) exportData(c context.Context, ctx *app.RequestContext) {
	format, err := export.ParseFormat(ctx.DefaultQuery("format", "json"))
	if err != nil {
		ctx.Data(consts.StatusBadRequest, "text/plain; charset=utf-8", []byte(err.Error()))
		return
	}
	data, err := s.svc.Snapshot(c)
	if err != nil {
		s.fail(c, ctx, shell.PathSettings, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, data); err != nil {
		s.renderError(c, ctx, err)
		return
	}
	name := "jobflow-export-" + data.ExportedAt.Format("2006-01-02") + format.Ext()
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Data(consts.StatusOK, format.ContentType(), buf.Bytes())
}

// checked 复选框提交 "on" 或 "true"
func checked(ctx *app.RequestContext, key string) bool {
	switch ctx.PostForm(key) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}

// formValues 同名字段的全部取值
func formValues(ctx *app.RequestContext, key string) []string {
	raw := ctx.PostArgs().PeekAll(key)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if len(v) > 0 {
			out = append(out, string(v))
		}
	}
	return out
}

// splitList 逗号分隔的列表
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
