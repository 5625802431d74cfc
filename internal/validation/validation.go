// Package validation 表单的本地校验，校验失败时不发起任何网络请求
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 错误中使用 JSON 字段名，与后端和表单保持一致
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// FieldError 单个字段的错误
type FieldError struct {
	Field   string
	Message string
}

// Errors 按字段声明顺序排列的校验错误
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Get 返回字段的第一条错误，没有时为空字符串
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Map 字段到错误的映射，供模板使用
func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// AsErrors 从错误链中取出校验错误
func AsErrors(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// messenger 表单可以为 "字段.规则" 或 "字段" 提供自定义提示
type messenger interface {
	Messages() map[string]string
}

// Validate 校验表单，通过时返回 nil，否则返回 Errors
func Validate(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("无法校验 %T: %w", form, err)
	}

	var custom map[string]string
	if m, ok := form.(messenger); ok {
		custom = m.Messages()
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe, custom)})
	}
	return out
}

func message(fe validator.FieldError, custom map[string]string) string {
	if msg, ok := custom[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := custom[fe.Field()]; ok {
		return msg
	}

	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Valid email is required"
	case "url", "http_url":
		return label + " must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label + " is invalid"
	}
}

// humanize 把 postedAfter、linkedin_url 这样的字段名转成 "Posted after"、"Linkedin url"
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteRune(' ')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
