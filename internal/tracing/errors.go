package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 定义错误类型，便于分类和过滤
type ErrorType string

const (
	// ErrorTypeHTTP 后端返回非2xx
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeNetwork 网络层失败（连接、TLS、超时）
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRedis Redis错误
	ErrorTypeRedis ErrorType = "redis"
	// ErrorTypeAMQP 插件消息通道错误
	ErrorTypeAMQP ErrorType = "amqp"
	// ErrorTypeValidation 表单验证错误
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeInternal 内部错误
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeStorage 对象存储直传错误
	ErrorTypeStorage ErrorType = "object_storage"
)

// RecordError 记录错误，添加统一的错误类型和详情
func RecordError(span trace.Span, err error, errorType ErrorType) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	span.SetStatus(codes.Error, err.Error())
}

// RecordErrorWithInfo 记录错误并添加额外信息
func RecordErrorWithInfo(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}

// StatusCategory 根据HTTP状态码分类错误
func StatusCategory(statusCode int) string {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "unknown"
	}
}

// RecordHTTPError 专门记录HTTP错误
// 错误信息来自后端响应体，写入 span 前先截断
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	if span == nil || err == nil {
		return
	}

	msg := SafeBody(err.Error())
	span.AddEvent("exception", trace.WithAttributes(
		attribute.String("exception.message", msg),
	))
	span.SetAttributes(
		attribute.String("error.type", string(ErrorTypeHTTP)),
		attribute.String("error.message", msg),
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", StatusCategory(statusCode)),
	)
	span.SetStatus(codes.Error, msg)
}
