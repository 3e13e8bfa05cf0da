// Package client 实现对远程订单服务的 HTTP 调用，带线性退避重试、出站限流与可选熔断
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/async"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/metrics"
	"github.com/wyfcoding/fxorderbook/pkg/utils"
)

// 远程操作名，同时用作路径与指标标签
const (
	OpCreateOrder    = "createOrder"
	OpCancelOrder    = "cancelOrder"
	OpRetrieveOrders = "retrieveOrders"
	OpRateSnapshot   = "rateSnapshot"
	OpSupportedPairs = "supportedCurrencyPairs"
)

// Waiter 出站限流
type Waiter interface {
	Wait(ctx context.Context) error
}

// BreakerOptions 熔断器参数
type BreakerOptions struct {
	MaxFailures      uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// Options 客户端参数
type Options struct {
	BaseURL       string
	RetryAttempts int
	RetryDelay    time.Duration

	ConnectTimeout        time.Duration
	ResponseTimeout       time.Duration
	IdleTimeout           time.Duration
	MaxConnections        int
	MaxConnectionsPerHost int

	// 可选
	Limiter Waiter
	Breaker *BreakerOptions
	Metrics *metrics.Metrics
	Sleep   utils.Sleeper
}

// OrderServiceClient 订单服务客户端。无跨调用的可变状态，可并发使用
type OrderServiceClient struct {
	http    *resty.Client
	baseURL string
	policy  utils.RetryPolicy
	limiter Waiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewOrderServiceClient 创建客户端
func NewOrderServiceClient(opts Options) (*OrderServiceClient, error) {
	base := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: order service base URL must not be empty", domain.ErrValidationFailed)
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext,
		MaxIdleConns:          opts.MaxConnections,
		MaxIdleConnsPerHost:   opts.MaxConnectionsPerHost,
		MaxConnsPerHost:       opts.MaxConnectionsPerHost,
		IdleConnTimeout:       opts.IdleTimeout,
		ResponseHeaderTimeout: opts.ResponseTimeout,
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetBaseURL(base).
		SetHeader("Accept", "application/json")
	if opts.ResponseTimeout > 0 {
		httpClient.SetTimeout(opts.ResponseTimeout)
	}

	c := &OrderServiceClient{
		http:    httpClient,
		baseURL: base,
		limiter: opts.Limiter,
		metrics: opts.Metrics,
	}
	c.policy = utils.RetryPolicy{
		Attempts: opts.RetryAttempts,
		Delay:    opts.RetryDelay,
		Backoff:  utils.LinearBackoff,
		Sleep:    opts.Sleep,
	}

	if opts.Breaker != nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "order-service",
			MaxRequests: opts.Breaker.HalfOpenRequests,
			Timeout:     opts.Breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.Breaker.MaxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn(context.Background(), "Circuit breaker state changed",
					"breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	logger.Info(context.Background(), "Order service client created",
		"base_url", base,
		"retry_attempts", opts.RetryAttempts,
		"retry_delay", opts.RetryDelay,
		"circuit_breaker", c.breaker != nil,
	)
	return c, nil
}

// BaseURL 规范化后的服务地址
func (c *OrderServiceClient) BaseURL() string {
	return c.baseURL
}

// execute 在重试策略下执行一次远程操作
func (c *OrderServiceClient) execute(ctx context.Context, op string, attempt func(ctx context.Context) error) error {
	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, uuid.NewString())
	}
	start := time.Now()

	policy := c.policy
	policy.OnRetry = func(n int, err error, wait time.Duration) {
		logger.Warn(ctx, "Remote call failed, retrying",
			"operation", op,
			"attempt", n,
			"max_attempts", policy.Attempts,
			"backoff", wait,
			"error", err,
		)
		c.metrics.IncRetry(op)
	}

	err := utils.Retry(ctx, policy, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: rate limiter: %w", op, err)
			}
		}
		return c.guard(ctx, attempt)
	})
	if err == nil {
		c.metrics.ObserveRemote(op, "success", time.Since(start))
		logger.Debug(ctx, "Remote call succeeded", "operation", op, "duration", time.Since(start))
		return nil
	}

	c.metrics.ObserveRemote(op, "failure", time.Since(start))
	var re *utils.RetryError
	if errors.As(err, &re) {
		if re.Interrupted != nil {
			logger.Warn(ctx, "Remote call interrupted during backoff", "operation", op, "attempts", re.Attempts, "error", re.Last)
			return fmt.Errorf("%w: %s interrupted after %d attempts: %w", domain.ErrServiceUnavailable, op, re.Attempts, re)
		}
		logger.Error(ctx, "Remote call failed after all retries", "operation", op, "attempts", re.Attempts, "error", re.Last)
		return fmt.Errorf("%w: %s failed after %d attempts: %w", domain.ErrServiceUnavailable, op, re.Attempts, re.Last)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrServiceUnavailable, op, err)
}

// guard 经过熔断器执行单次尝试
func (c *OrderServiceClient) guard(ctx context.Context, attempt func(ctx context.Context) error) error {
	if c.breaker == nil {
		return attempt(ctx)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, attempt(ctx)
	})
	return err
}

func (c *OrderServiceClient) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", logger.RequestID(ctx)).
		SetHeader("Content-Type", "application/json")
}

// call 发起单次 HTTP 请求并解码 2xx 响应
func (c *OrderServiceClient) call(ctx context.Context, op, method string, body any, out any) error {
	req := c.newRequest(ctx)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		req.SetBody(data)
	}

	resp, err := req.Execute(method, "/"+op)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsSuccess() {
		return newStatusError(op, resp.StatusCode(), resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// CreateOrder 提交订单
func (c *OrderServiceClient) CreateOrder(ctx context.Context, order OrderDTO) (OrderDTO, error) {
	var created OrderDTO
	err := c.execute(ctx, OpCreateOrder, func(ctx context.Context) error {
		created = OrderDTO{}
		return c.call(ctx, OpCreateOrder, http.MethodPost, order, &created)
	})
	if err != nil {
		return OrderDTO{}, err
	}
	return created, nil
}

// CancelOrder 撤销订单，订单不存在时返回 false
func (c *OrderServiceClient) CancelOrder(ctx context.Context, id string) (bool, error) {
	var cancelled bool
	err := c.execute(ctx, OpCancelOrder, func(ctx context.Context) error {
		cancelled = false
		return c.call(ctx, OpCancelOrder, http.MethodPost, id, &cancelled)
	})
	if err != nil {
		return false, err
	}
	return cancelled, nil
}

// RetrieveOrders 列出全部订单
func (c *OrderServiceClient) RetrieveOrders(ctx context.Context) ([]OrderDTO, error) {
	var orders []OrderDTO
	err := c.execute(ctx, OpRetrieveOrders, func(ctx context.Context) error {
		orders = nil
		return c.call(ctx, OpRetrieveOrders, http.MethodGet, nil, &orders)
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// RateSnapshot 获取报价快照
func (c *OrderServiceClient) RateSnapshot(ctx context.Context) ([]FXRateDTO, error) {
	var rates []FXRateDTO
	err := c.execute(ctx, OpRateSnapshot, func(ctx context.Context) error {
		rates = nil
		return c.call(ctx, OpRateSnapshot, http.MethodGet, nil, &rates)
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// SupportedCurrencyPairs 获取支持的货币对
func (c *OrderServiceClient) SupportedCurrencyPairs(ctx context.Context) ([]CurrencyPairDTO, error) {
	var pairs []CurrencyPairDTO
	err := c.execute(ctx, OpSupportedPairs, func(ctx context.Context) error {
		pairs = nil
		return c.call(ctx, OpSupportedPairs, http.MethodGet, nil, &pairs)
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// Healthy 连通性探测，任何失败都返回 false
func (c *OrderServiceClient) Healthy(ctx context.Context) bool {
	if _, err := c.SupportedCurrencyPairs(ctx); err != nil {
		logger.Warn(ctx, "Order service health check failed", "error", err)
		return false
	}
	return true
}

// CreateOrderAsync 异步提交订单
func (c *OrderServiceClient) CreateOrderAsync(ctx context.Context, order OrderDTO) *async.Future[OrderDTO] {
	return async.Go(ctx, func(ctx context.Context) (OrderDTO, error) { return c.CreateOrder(ctx, order) })
}

// CancelOrderAsync 异步撤销订单
func (c *OrderServiceClient) CancelOrderAsync(ctx context.Context, id string) *async.Future[bool] {
	return async.Go(ctx, func(ctx context.Context) (bool, error) { return c.CancelOrder(ctx, id) })
}

// RetrieveOrdersAsync 异步列出订单
func (c *OrderServiceClient) RetrieveOrdersAsync(ctx context.Context) *async.Future[[]OrderDTO] {
	return async.Go(ctx, c.RetrieveOrders)
}

// RateSnapshotAsync 异步获取报价快照
func (c *OrderServiceClient) RateSnapshotAsync(ctx context.Context) *async.Future[[]FXRateDTO] {
	return async.Go(ctx, c.RateSnapshot)
}

// SupportedCurrencyPairsAsync 异步获取支持的货币对
func (c *OrderServiceClient) SupportedCurrencyPairsAsync(ctx context.Context) *async.Future[[]CurrencyPairDTO] {
	return async.Go(ctx, c.SupportedCurrencyPairs)
}

// HealthyAsync 异步连通性探测
func (c *OrderServiceClient) HealthyAsync(ctx context.Context) *async.Future[bool] {
	return async.Go(ctx, func(ctx context.Context) (bool, error) { return c.Healthy(ctx), nil })
}
