package views

import (
	"context"

	"jobflow-dashboard/internal/apiclient"
)

// State 一次数据加载的结果
// 出错时只展示错误，不展示旧数据
type State[T any] struct {
	Data T
	Err  error
}

// Load 执行加载函数
func Load[T any](ctx context.Context, fn func(context.Context) (T, error)) State[T] {
	data, err := fn(ctx)
	if err != nil {
		var zero T
		return State[T]{Data: zero, Err: err}
	}
	return State[T]{Data: data}
}

func (s State[T]) OK() bool {
	return s.Err == nil
}

// Message 面向用户的错误提示
func (s State[T]) Message() string {
	return apiclient.UserMessage(s.Err)
}
