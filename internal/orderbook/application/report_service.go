package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// 健康状态描述
const (
	StatusOperational = "All systems operational"
	StatusUnavailable = "Order service unavailable"
)

// Analytics 订单与报价统计
type Analytics struct {
	TotalOrders int
	BuyOrders   int
	SellOrders  int
	TotalRates  int
	Timestamp   time.Time
}

// HealthStatus 远程服务健康状态
type HealthStatus struct {
	Healthy   bool
	Status    string
	CheckedAt time.Time
}

// ReportService 订单簿报表：对账、报价表、汇总、统计与健康检查
type ReportService struct {
	orders *OrderService
	rates  *RateService
	health domain.HealthChecker
	clock  domain.Clock
}

// NewReportService 创建报表服务，订单与报价均经由应用服务读取
func NewReportService(orders *OrderService, rates *RateService, health domain.HealthChecker, clock domain.Clock) *ReportService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ReportService{orders: orders, rates: rates, health: health, clock: clock}
}

// fetch 并发获取订单与报价，任一失败时取消另一方
func (s *ReportService) fetch(ctx context.Context) ([]*domain.Order, []domain.FXRate, error) {
	var (
		orders []*domain.Order
		rates  []domain.FXRate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.GetAllOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.rates.GetCurrentRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return orders, rates, nil
}

// OrdersReport 订单与市场价对账
func (s *ReportService) OrdersReport(ctx context.Context) (OrdersReport, error) {
	defer logger.LogDuration(ctx, "Orders report built")()

	orders, rates, err := s.fetch(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to build orders report", "error", err)
		return OrdersReport{}, err
	}
	return BuildOrdersReport(orders, rates), nil
}

// RatesTable 报价表
func (s *ReportService) RatesTable(ctx context.Context) ([]RateRow, error) {
	rates, err := s.rates.GetCurrentRates(ctx)
	if err != nil {
		return nil, err
	}
	return BuildRatesTable(rates), nil
}

// Summary 订单汇总
func (s *ReportService) Summary(ctx context.Context) (SummaryReport, error) {
	orders, err := s.orders.GetAllOrders(ctx)
	if err != nil {
		return SummaryReport{}, err
	}
	return BuildSummary(orders), nil
}

// Analytics 订单与报价统计
func (s *ReportService) Analytics(ctx context.Context) (Analytics, error) {
	orders, rates, err := s.fetch(ctx)
	if err != nil {
		return Analytics{}, err
	}
	a := Analytics{TotalOrders: len(orders), TotalRates: len(rates), Timestamp: s.clock.Now()}
	for _, o := range orders {
		if o.Buy {
			a.BuyOrders++
		} else {
			a.SellOrders++
		}
	}
	return a, nil
}

// Health 健康检查，从不返回错误
func (s *ReportService) Health(ctx context.Context) HealthStatus {
	st := HealthStatus{CheckedAt: s.clock.Now(), Status: StatusUnavailable}
	if s.health != nil && s.health.Healthy(ctx) {
		st.Healthy = true
		st.Status = StatusOperational
	}
	return st
}
