// Package messaging 发布订单审计事件
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

// 事件类型
const (
	EventOrderCreated   = "OrderCreatedEvent"
	EventOrderCancelled = "OrderCancelledEvent"
)

// Envelope 审计事件信封
type Envelope struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredOn time.Time       `json:"occurredOn"`
	Payload    json.RawMessage `json:"payload"`
}

// Sender 消息发送方，由 mq.Producer 实现
type Sender interface {
	SendMessage(ctx context.Context, key string, value any) error
}

// KafkaEventPublisher 实现 EventPublisher 接口，事件以订单 ID 为 key 写入 Kafka
type KafkaEventPublisher struct {
	sender Sender
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(sender Sender) *KafkaEventPublisher {
	return &KafkaEventPublisher{sender: sender}
}

// PublishOrderCreated 发布订单创建事件
func (p *KafkaEventPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.publishEvent(ctx, EventOrderCreated, event.OrderID, event.OccurredOn, event)
}

// PublishOrderCancelled 发布订单被取消事件
func (p *KafkaEventPublisher) PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error {
	return p.publishEvent(ctx, EventOrderCancelled, event.OrderID, event.OccurredOn, event)
}

// publishEvent 通用事件发布方法
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType, key string, at time.Time, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sender.SendMessage(ctx, key, Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredOn: at,
		Payload:    payload,
	})
}

// NoopEventPublisher 不发布任何事件
type NoopEventPublisher struct{}

// PublishOrderCreated 忽略事件
func (NoopEventPublisher) PublishOrderCreated(context.Context, domain.OrderCreatedEvent) error {
	return nil
}

// PublishOrderCancelled 忽略事件
func (NoopEventPublisher) PublishOrderCancelled(context.Context, domain.OrderCancelledEvent) error {
	return nil
}
