// Package repository 将远程订单服务适配为领域仓储，并提供报价快照缓存装饰器
package repository

import (
	"context"
	"fmt"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/infrastructure/client"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// HTTPOrderRepository 基于订单服务客户端的订单仓储
type HTTPOrderRepository struct {
	client *client.OrderServiceClient
}

// NewHTTPOrderRepository 创建订单仓储
func NewHTTPOrderRepository(c *client.OrderServiceClient) *HTTPOrderRepository {
	return &HTTPOrderRepository{client: c}
}

// Create 提交订单
func (r *HTTPOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created, err := r.client.CreateOrder(ctx, fromDomainOrder(order))
	if err != nil {
		return nil, err
	}
	o, err := toDomainOrder(created)
	if err != nil {
		return nil, fmt.Errorf("decode created order: %w", err)
	}
	return o, nil
}

// Cancel 撤销订单
func (r *HTTPOrderRepository) Cancel(ctx context.Context, id string) (bool, error) {
	return r.client.CancelOrder(ctx, id)
}

// List 列出全部订单，无法解析的记录被跳过
func (r *HTTPOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	dtos, err := r.client.RetrieveOrders(ctx)
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomainOrder(dto)
		if err != nil {
			logger.Warn(ctx, "Skipping malformed order from order service", "error", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
