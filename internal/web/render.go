package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/shell"
	"jobflow-dashboard/internal/tracing"
	"jobflow-dashboard/internal/validation"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"join": strings.Join,
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	return tmpl, nil
}

// Flash 一次性的提示，通过重定向的查询参数传递
type Flash struct {
	Kind    string // success 或 error
	Message string
}

// pageData 所有页面共用的外层数据
type pageData struct {
	Title  string
	Active string
	Nav    []shell.NavItem
	Email  string
	Flash  *Flash
	Data   any
}

func (s *Server) newPage(c context.Context, ctx *app.RequestContext, title string, data any) pageData {
	p := pageData{
		Title:  title,
		Active: shell.ActiveTab(string(ctx.Path())),
		Nav:    shell.NavItems(),
		Data:   data,
	}
	if email, err := s.svc.Tokens().Email(c); err == nil {
		p.Email = email
	}
	if msg := ctx.Query("flash"); msg != "" {
		kind := ctx.Query("kind")
		if kind == "" {
			kind = "success"
		}
		p.Flash = &Flash{Kind: kind, Message: msg}
	}
	return p
}

func (s *Server) render(ctx *app.RequestContext, status int, name string, p pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("渲染页面失败")
		ctx.Data(consts.StatusInternalServerError, "text/plain; charset=utf-8", []byte("template error"))
		return
	}
	ctx.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// redirect 带提示跳转(Post/Redirect/Get)
func redirect(ctx *app.RequestContext, path string, f Flash) {
	target := path
	if f.Message != "" {
		q := url.Values{}
		q.Set("flash", f.Message)
		if f.Kind != "" {
			q.Set("kind", f.Kind)
		}
		target += "?" + q.Encode()
	}
	ctx.Redirect(consts.StatusFound, []byte(target))
}

// fail 表单错误跳回原页面；401 时回到登录页
func (s *Server) fail(c context.Context, ctx *app.RequestContext, back string, err error) {
	hlog.CtxWarnf(c, "请求失败: %v", err)
	if verrs, ok := validation.AsErrors(err); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field)
		}
		tracing.RecordErrorWithInfo(trace.SpanFromContext(c), err, tracing.ErrorTypeValidation,
			attribute.StringSlice("validation.fields", fields))
	}
	if apiclient.IsUnauthorized(err) {
		redirect(ctx, shell.PathAuth, Flash{Kind: "error", Message: apiclient.UserMessage(err)})
		return
	}
	redirect(ctx, back, Flash{Kind: "error", Message: errorMessage(err)})
}

// errorMessage 校验错误列出全部字段，其他错误使用面向用户的提示
func errorMessage(err error) string {
	if verrs, ok := validation.AsErrors(err); ok {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Message)
		}
		return strings.Join(msgs, ". ")
	}
	return apiclient.UserMessage(err)
}

func (s *Server) renderError(c context.Context, ctx *app.RequestContext, err error) {
	s.log.Error().Err(err).Str("path", string(ctx.Path())).Msg("页面处理失败")
	p := s.newPage(c, ctx, "Error", nil)
	p.Flash = &Flash{Kind: "error", Message: apiclient.UserMessage(err)}
	s.render(ctx, consts.StatusInternalServerError, "error", p)
}

func (s *Server) notFound(c context.Context, ctx *app.RequestContext) {
	p := s.newPage(c, ctx, shell.NotFound.Title, nil)
	s.render(ctx, consts.StatusNotFound, "notfound", p)
}
