// Package apiclient 封装对后端 REST API 的访问
// 负责拼接地址、附加 bearer token、统一错误格式
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobflow-dashboard/internal/credentials"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/tracing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("jobflow-dashboard/apiclient")

// 错误响应体最多读取的字节数
const maxErrorBody = 64 * 1024

// UnauthorizedBehavior 查询遇到 401 时的处理方式
type UnauthorizedBehavior int

const (
	// Throw 401 作为 HTTPError 返回
	Throw UnauthorizedBehavior = iota
	// ReturnNull 401 时返回 nil 数据且不报错
	ReturnNull
)

// Client 后端 API 客户端，并发安全
type Client struct {
	baseURL    string
	creds      credentials.Provider
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 使用自定义的 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New 创建客户端
// creds 为 nil 时所有请求都不带 Authorization 头
func New(baseURL string, creds credentials.Provider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{},
		logger:     logger.Component("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 返回后端根地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL 以 http:// 或 https:// 开头的地址原样使用，否则拼接在根地址之后
func (c *Client) ResolveURL(path string) string {
	if hasScheme(path) {
		return path
	}
	return c.baseURL + path
}

func hasScheme(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Request 发送一个 JSON 请求
// body 非 nil 时附加 JSON Content-Type；GET 和 HEAD 不发送请求体
// 返回的响应状态码一定是 2xx，调用方负责关闭 Body
func (c *Client) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		contentType = "application/json"
		if method != http.MethodGet && method != http.MethodHead {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("序列化请求体失败: %w", err)
			}
			reader = bytes.NewReader(payload)
		}
	}
	return c.do(ctx, method, path, reader, contentType)
}

// RequestRaw 发送任意请求体，例如 multipart 表单
func (c *Client) RequestRaw(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	return c.do(ctx, method, path, body, contentType)
}

// Query 执行 GET 请求并返回响应体
// on401 为 ReturnNull 时，401 返回 (nil, nil)
func (c *Client) Query(ctx context.Context, path string, on401 UnauthorizedBehavior) ([]byte, error) {
	resp, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		if on401 == ReturnNull && IsUnauthorized(err) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: http.MethodGet, URL: c.ResolveURL(path), Err: err}
	}
	return data, nil
}

// Do 发送 JSON 请求并把响应解码到 out，out 为 nil 时丢弃响应体
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	url := c.ResolveURL(path)

	ctx, span := tracer.Start(ctx, method+" "+path)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", tracing.SafeURL(url)),
	)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	// 每次请求都重新读取令牌，登录和退出后立即生效
	if c.creds != nil {
		token, err := c.creds.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("读取令牌失败: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeNetwork)
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("url", tracing.SafeURL(url)).
			Str("request_id", requestID).
			Msg("请求失败")
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug().
		Str("method", method).
		Str("url", tracing.SafeURL(url)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("请求完成")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	httpErr := readHTTPError(resp, method, url)
	tracing.RecordHTTPError(span, httpErr, resp.StatusCode)
	return nil, httpErr
}

// readHTTPError 读取错误响应体并关闭
// 响应体为空时使用状态文本
func readHTTPError(resp *http.Response, method, url string) *HTTPError {
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := string(data)
	if message == "" {
		message = statusText(resp)
	}
	return &HTTPError{
		Status:  resp.StatusCode,
		Message: message,
		Method:  method,
		URL:     url,
	}
}

func statusText(resp *http.Response) string {
	// resp.Status 形如 "404 Not Found"
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// DecodeJSON 解码响应体并关闭，空响应体不报错
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	return Unmarshal(data, out)
}

// Unmarshal 与 json.Unmarshal 相同，但忽略空数据和 nil 目标
func Unmarshal(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}
