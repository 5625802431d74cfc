// Package messaging 与浏览器伴随插件之间的消息通道
package messaging

import (
	"context"
	"sync"

	"jobflow-dashboard/internal/models"
)

// ActionAutoApplyJobs 通知插件开始自动申请
const ActionAutoApplyJobs = "autoApplyJobs"

// Messenger 向插件发送消息
// 插件不存在时实现应返回 nil，发送失败不影响主流程
type Messenger interface {
	Send(ctx context.Context, msg models.ExtensionMessage) error
	Close() error
}

// NoopMessenger 未配置消息通道时使用
type NoopMessenger struct{}

func (NoopMessenger) Send(context.Context, models.ExtensionMessage) error { return nil }
func (NoopMessenger) Close() error { return nil }

// MemoryMessenger 把消息保存在内存中，本地看板的插件状态页和测试使用
type MemoryMessenger struct {
	mu   sync.Mutex
	sent []models.ExtensionMessage
}

func (m *MemoryMessenger) Send(_ context.Context, msg models.ExtensionMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MemoryMessenger) Close() error { return nil }

// Sent 返回已发送消息的副本
func (m *MemoryMessenger) Sent() []models.ExtensionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ExtensionMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
