package domain

import (
	"time"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID       string    `json:"orderId"`
	InvestmentCcy string    `json:"investmentCcy"`
	CounterCcy    string    `json:"counterCcy"`
	Side          OrderSide `json:"side"`
	Limit         string    `json:"limit,omitempty"`
	ValidUntil    string    `json:"validUntil"`
	OccurredOn    time.Time `json:"occurredOn"`
}

// NewOrderCreatedEvent 由远程服务返回的订单构造事件
func NewOrderCreatedEvent(o *Order, at time.Time) OrderCreatedEvent {
	ev := OrderCreatedEvent{
		OrderID:       o.ID,
		InvestmentCcy: o.InvestmentCcy,
		CounterCcy:    o.CounterCcy,
		Side:          o.Side(),
		ValidUntil:    o.ValidUntil,
		OccurredOn:    at,
	}
	if o.Limit.Valid {
		ev.Limit = o.Limit.Decimal.String()
	}
	return ev
}

// OrderCancelledEvent 订单撤销事件
type OrderCancelledEvent struct {
	OrderID    string    `json:"orderId"`
	OccurredOn time.Time `json:"occurredOn"`
}
