// Package web 本地看板服务，基于 hertz 渲染服务端页面
package web

import (
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/service"
	"jobflow-dashboard/internal/shell"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/rs/zerolog"
)

// Server 看板服务
type Server struct {
	h     *server.Hertz
	svc   *service.Services
	guard *shell.Guard
	tmpl  *template.Template
	now   func() time.Time
	log   zerolog.Logger

	maxUploadMB int64
}

// Option 服务选项
type Option func(*Server)

// WithClock 替换当前时间，用于相对日期的显示
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New 创建服务并注册路由
func New(cfg *config.Config, svc *service.Services, opts ...Option) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// 浏览器断开时取消请求上下文，正在等待的查询随之结束
		server.WithSenseClientDisconnection(true),
		tracer,
	)

	s := &Server{
		h:     h,
		svc:   svc,
		guard: shell.NewGuard(svc.Tokens()),
		tmpl:  tmpl,
		now:   time.Now,
		log:   logger.Component("web"),

		maxUploadMB: cfg.Upload.MaxSizeMB,
	}
	for _, opt := range opts {
		opt(s)
	}

	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		hlog.CtxInfof(c, "%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start))
	})
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	h := s.h

	h.GET("/healthz", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	// 页面
	h.GET(shell.PathAuth, s.page, s.authPage)
	h.GET(shell.PathDashboard, s.page, s.dashboardPage)
	h.GET(shell.PathURLs, s.page, s.urlsPage)
	h.GET(shell.PathApplications, s.page, s.applicationsPage)
	h.GET(shell.PathJobs, s.page, s.jobsPage)
	h.GET(shell.PathProfile, s.page, s.profilePage)
	h.GET(shell.PathCVBuilder, s.page, s.cvBuilderPage)
	h.GET(shell.PathSettings, s.page, s.settingsPage)

	// 登录和注册不需要令牌
	h.POST("/auth/login", s.sameOrigin, s.login)
	h.POST("/auth/signup", s.sameOrigin, s.signup)

	// 表单提交
	actions := h.Group("", s.sameOrigin, s.requireSession)
	actions.POST("/logout", s.logout)
	actions.POST("/preferences", s.savePreferences)
	actions.POST("/jobs/discover", s.discover)
	actions.POST("/jobs/auto-apply", s.autoApply)
	actions.POST("/urls", s.addURL)
	actions.POST("/urls/autofill", s.autofillURLs)
	actions.POST("/urls/:id/delete", s.deleteURL)
	actions.POST("/profile", s.saveProfile)
	actions.POST("/cv-builder/upload", s.uploadResume)
	actions.POST("/settings", s.saveSettings)
	actions.POST("/settings/clear", s.clearData)
	actions.GET("/export", s.exportData)

	h.NoRoute(s.notFound)
}

// page 页面守卫：未登录访问受保护页面跳转登录页
func (s *Server) page(c context.Context, ctx *app.RequestContext) {
	d, err := s.guard.Resolve(c, string(ctx.Path()))
	if err != nil {
		s.renderError(c, ctx, err)
		ctx.Abort()
		return
	}
	if d.Redirect != "" {
		ctx.Redirect(consts.StatusFound, []byte(d.Redirect))
		ctx.Abort()
		return
	}
	ctx.Set("route", d.Route)
	ctx.Next(c)
}

// requireSession 表单提交同样要求已登录
func (s *Server) requireSession(c context.Context, ctx *app.RequestContext) {
	ok, err := s.guard.Authenticated(c)
	if err != nil {
		s.renderError(c, ctx, err)
		ctx.Abort()
		return
	}
	if !ok {
		ctx.Redirect(consts.StatusFound, []byte(shell.PathAuth))
		ctx.Abort()
		return
	}
	ctx.Next(c)
}

// sameOrigin 拒绝其他站点发起的表单提交
// 浏览器的跨站 POST 会带 Origin 或 Referer，两者都没有的请求来自脚本或命令行
func (s *Server) sameOrigin(c context.Context, ctx *app.RequestContext) {
	method := string(ctx.Method())
	if method == consts.MethodGet || method == consts.MethodHead {
		ctx.Next(c)
		return
	}

	source := string(ctx.Request.Header.Peek("Origin"))
	if source == "" {
		source = string(ctx.Request.Header.Peek("Referer"))
	}
	if source != "" && !sameHost(source, string(ctx.Request.Header.Host())) {
		s.log.Warn().Str("source", source).Str("path", string(ctx.Path())).Msg("拒绝跨站表单提交")
		ctx.AbortWithMsg("Forbidden: cross-site request", consts.StatusForbidden)
		return
	}
	ctx.Next(c)
}

// sameHost Origin 为 "null" 或无法解析时视为不同站点
func sameHost(source, host string) bool {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// Engine 返回 hertz 服务，测试中配合 ut.PerformRequest 使用
func (s *Server) Engine() *server.Hertz {
	return s.h
}

// Run 阻塞直到服务退出
func (s *Server) Run() error {
	s.log.Info().Msg("看板服务启动")
	return s.h.Run()
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.h.Shutdown(ctx)
}
