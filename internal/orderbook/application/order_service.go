// Package application 订单簿客户端的用例逻辑：订单门面、报价服务与对账报表
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/async"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/metrics"
)

// OrderService 订单门面，在调用远程服务前完成校验
type OrderService struct {
	repo      domain.OrderRepository
	publisher domain.EventPublisher
	clock     domain.Clock
	metrics   *metrics.Metrics
}

// NewOrderService 创建订单门面，publisher 与 clock 可为 nil
func NewOrderService(repo domain.OrderRepository, publisher domain.EventPublisher, clock domain.Clock, m *metrics.Metrics) *OrderService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &OrderService{repo: repo, publisher: publisher, clock: clock, metrics: m}
}

// validateForCreation 创建前校验：订单非空、尚无 ID、货币对合法、有效期不早于今天
func (s *OrderService) validateForCreation(order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order must not be nil", domain.ErrValidationFailed)
	}
	if order.HasID() {
		return fmt.Errorf("%w: order already has an id %q", domain.ErrValidationFailed, order.ID)
	}
	if _, err := order.CurrencyPair(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}
	if !order.IsValidAt(s.clock.Now()) {
		return fmt.Errorf("%w: valid until %q is malformed or in the past", domain.ErrValidationFailed, order.ValidUntil)
	}
	return nil
}

// CreateOrder 创建订单
// 用例流程：
// 1. 校验订单
// 2. 提交到远程订单服务
// 3. 发布订单创建事件（失败只记日志）
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	defer logger.LogDuration(ctx, "Order creation completed")()

	if err := s.validateForCreation(order); err != nil {
		logger.Warn(ctx, "Order rejected before submission", "error", err)
		return nil, err
	}

	logger.Info(ctx, "Creating new order",
		"pair", order.PairLabel(),
		"side", order.Side(),
		"valid_until", order.ValidUntil,
	)

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		logger.Error(ctx, "Failed to create order", "error", err)
		return nil, err
	}
	s.metrics.IncOrdersCreated()
	logger.Info(ctx, "Order created", "order_id", created.ID)

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, domain.NewOrderCreatedEvent(created, s.clock.Now())); err != nil {
			logger.Warn(ctx, "Failed to publish order created event", "order_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// CreateOrderAsync 异步创建订单，校验失败时立即返回已完成的 Future
func (s *OrderService) CreateOrderAsync(ctx context.Context, order *domain.Order) *async.Future[*domain.Order] {
	if err := s.validateForCreation(order); err != nil {
		return async.Resolved[*domain.Order](nil, err)
	}
	return async.Go(ctx, func(ctx context.Context) (*domain.Order, error) {
		return s.CreateOrder(ctx, order)
	})
}

// CancelOrder 撤销订单，订单不存在时返回 false
func (s *OrderService) CancelOrder(ctx context.Context, id string) (bool, error) {
	logger.Info(ctx, "Cancelling order", "order_id", id)

	ok, err := s.repo.Cancel(ctx, id)
	if err != nil {
		logger.Error(ctx, "Failed to cancel order", "order_id", id, "error", err)
		return false, err
	}
	if !ok {
		logger.Info(ctx, "Order not found or already cancelled", "order_id", id)
		return false, nil
	}

	s.metrics.IncOrdersCancelled()
	if s.publisher != nil {
		ev := domain.OrderCancelledEvent{OrderID: id, OccurredOn: s.clock.Now()}
		if err := s.publisher.PublishOrderCancelled(ctx, ev); err != nil {
			logger.Warn(ctx, "Failed to publish order cancelled event", "order_id", id, "error", err)
		}
	}
	return true, nil
}

// CancelOrderAsync 异步撤销订单
func (s *OrderService) CancelOrderAsync(ctx context.Context, id string) *async.Future[bool] {
	return async.Go(ctx, func(ctx context.Context) (bool, error) {
		return s.CancelOrder(ctx, id)
	})
}

// GetAllOrders 列出全部订单
func (s *OrderService) GetAllOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to retrieve orders", "error", err)
		return nil, err
	}
	logger.Debug(ctx, "Retrieved orders", "count", len(orders))
	return orders, nil
}

// GetAllOrdersAsync 异步列出全部订单
func (s *OrderService) GetAllOrdersAsync(ctx context.Context) *async.Future[[]*domain.Order] {
	return async.Go(ctx, s.GetAllOrders)
}

// FindByID 按 ID 查找订单；列表调用失败时记录日志并视为未找到
func (s *OrderService) FindByID(ctx context.Context, id string) (*domain.Order, bool) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to look up order", "order_id", id, "error", err)
		return nil, false
	}
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// IsValidationError 是否为提交前的校验错误
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrValidationFailed)
}
