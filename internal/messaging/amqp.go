package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/tracing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("jobflow-dashboard/messaging")

// channel amqp.Channel 中用到的方法，便于测试替换
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// 确保AMQPMessenger实现了Messenger接口
var _ Messenger = (*AMQPMessenger)(nil)

// AMQPMessenger 通过 RabbitMQ 把消息投递给插件
// 插件订阅 exchange 上的 routing key
type AMQPMessenger struct {
	conn       *amqp.Connection
	ch         channel
	exchange   string
	routingKey string

	publishMutex sync.Mutex // 同一个 channel 不能并发发布
	logger       zerolog.Logger
}

// NewAMQPMessenger 连接 RabbitMQ 并声明 topic 类型的持久化 exchange
func NewAMQPMessenger(cfg config.ExtensionConfig) (*AMQPMessenger, error) {
	if cfg.AMQPURL == "" {
		return nil, fmt.Errorf("AMQP URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道: %w", err)
	}

	m, err := newAMQPMessenger(ch, cfg.Exchange, cfg.RoutingKey)
	if err != nil {
		conn.Close()
		return nil, err
	}
	m.conn = conn
	return m, nil
}

func newAMQPMessenger(ch channel, exchange, routingKey string) (*AMQPMessenger, error) {
	if exchange == "" {
		return nil, fmt.Errorf("exchange名称不能为空")
	}
	// 防止尝试声明默认交换机
	if exchange == "amq.default" || exchange == "default" {
		return nil, fmt.Errorf("不能声明默认交换机 '%s'", exchange)
	}

	err := ch.ExchangeDeclare(
		exchange, // exchange名称
		"topic",  // exchange类型
		true,     // 持久化
		false,    // 自动删除
		false,    // 内部专用
		false,    // 非阻塞
		nil,      // 参数
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("声明exchange失败: %w", err)
	}

	return &AMQPMessenger{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger.Component("messaging"),
	}, nil
}

// Send 以持久化消息发布 JSON
func (m *AMQPMessenger) Send(ctx context.Context, msg models.ExtensionMessage) error {
	ctx, span := tracer.Start(ctx, "extension.Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.action", msg.Action),
		attribute.Int("messaging.jobs", len(msg.Jobs)),
	)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}

	messageID := uuid.NewString()

	m.publishMutex.Lock()
	err = m.ch.PublishWithContext(
		ctx,
		m.exchange,   // exchange名
		m.routingKey, // 路由键
		false,        // 强制
		false,        // 立即
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    messageID,
			Type:         msg.Action,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	m.publishMutex.Unlock()

	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeAMQP)
		return fmt.Errorf("发布插件消息失败: %w", err)
	}

	m.logger.Info().
		Str("message_id", messageID).
		Str("action", msg.Action).
		Int("jobs", len(msg.Jobs)).
		Msg("已发送插件消息")
	return nil
}

// Close 关闭通道和连接
func (m *AMQPMessenger) Close() error {
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

// New 根据配置选择实现，未配置 AMQP 地址时返回 NoopMessenger
func New(cfg config.ExtensionConfig) (Messenger, error) {
	if cfg.AMQPURL == "" {
		return NoopMessenger{}, nil
	}
	return NewAMQPMessenger(cfg)
}
