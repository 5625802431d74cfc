package apiclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// HTTPError 后端返回了非2xx状态码
// 调用方应根据 Status 分支（尤其是 401），而不是匹配 Message 文本
type HTTPError struct {
	Status  int
	Message string // 响应体文本，为空时为状态文本
	Method  string
	URL     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// NetworkError 请求未得到任何HTTP响应（连接失败、TLS握手失败、超时等）
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("请求 %s %s 失败: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusOf 返回错误中的HTTP状态码，非 HTTPError 时返回 false
func StatusOf(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, true
	}
	return 0, false
}

// IsUnauthorized 是否为 401
func IsUnauthorized(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusUnauthorized
}

// IsNotFound 是否为 404
func IsNotFound(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusNotFound
}

// IsClientError 是否为 4xx
func IsClientError(err error) bool {
	status, ok := StatusOf(err)
	return ok && status >= 400 && status < 500
}

// IsNetworkError 是否为网络层失败
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

const (
	msgNetwork = "Network connection issue. Please check your internet connection and try again."
	msgTLS     = "SSL/TLS connection issue. Please try again or contact support."
	msgTimeout = "The request timed out. Please try again."
	msgUnauth  = "Your session has expired. Please log in again."
)

// UserMessage 把错误转换成面向用户的提示
// HTTP 错误保留状态码和响应体，网络层错误统一为通用提示
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if IsUnauthorized(err) {
		return msgUnauth
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	if isTLSError(err) {
		return msgTLS
	}
	if IsNetworkError(err) {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return msgTimeout
		}
		return msgNetwork
	}
	return err.Error()
}

func isTLSError(err error) bool {
	var (
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		recordErr   tls.RecordHeaderError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:")
}
