package domain

import "context"

// OrderRepository 远程订单服务上的订单访问
type OrderRepository interface {
	// Create 提交订单，返回带 ID 的订单
	Create(ctx context.Context, order *Order) (*Order, error)
	// Cancel 撤销订单，订单不存在时返回 false
	Cancel(ctx context.Context, id string) (bool, error)
	// List 列出全部订单
	List(ctx context.Context) ([]*Order, error)
}

// RateRepository 远程订单服务上的报价访问
type RateRepository interface {
	// Snapshot 当前报价快照
	Snapshot(ctx context.Context) ([]FXRate, error)
	// SupportedPairs 支持的货币对
	SupportedPairs(ctx context.Context) ([]CurrencyPair, error)
}

// HealthChecker 远程服务连通性探测，任何失败都归约为 false
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}
