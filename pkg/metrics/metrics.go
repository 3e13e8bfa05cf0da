// Package metrics 提供 Prometheus 指标集合，覆盖远程调用、缓存、CLI 命令与订单业务计数
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

const namespace = "fxorderbook"

// Metrics 指标集合，所有方法允许 nil 接收者
type Metrics struct {
	// 远程操作结果（重试后），outcome: success, failure
	RemoteRequestsTotal *prometheus.CounterVec
	// 远程调用耗时
	RemoteRequestDuration *prometheus.HistogramVec
	// 重试次数
	RemoteRetriesTotal *prometheus.CounterVec

	// 汇率缓存命中，result: hit, miss
	RateCacheRequestsTotal *prometheus.CounterVec

	// CLI 命令计数
	CommandsProcessed prometheus.Counter
	CommandsErrors    prometheus.Counter

	// 业务指标
	OrdersCreated   prometheus.Counter
	OrdersCancelled prometheus.Counter
}

// New 创建指标实例
func New() *Metrics {
	return &Metrics{
		RemoteRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Remote order service calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		RemoteRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Remote order service call duration including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		RemoteRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_retries_total",
			Help:      "Retries issued against the remote order service",
		}, []string{"operation"}),
		RateCacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_requests_total",
			Help:      "Rate snapshot cache lookups",
		}, []string{"result"}),
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cli_commands_processed_total",
			Help:      "CLI commands processed",
		}),
		CommandsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cli_commands_errors_total",
			Help:      "CLI commands that ended in an error",
		}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders accepted by the remote service",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled by the remote service",
		}),
	}
}

// Register 在给定 Registerer 上注册所有指标，nil 时使用默认注册表
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		m.RemoteRequestsTotal,
		m.RemoteRequestDuration,
		m.RemoteRetriesTotal,
		m.RateCacheRequestsTotal,
		m.CommandsProcessed,
		m.CommandsErrors,
		m.OrdersCreated,
		m.OrdersCancelled,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Debug(context.Background(), "Metrics registered successfully")
	return nil
}

// ObserveRemote 记录一次远程调用的结果与耗时
func (m *Metrics) ObserveRemote(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RemoteRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.RemoteRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncRetry 记录一次重试
func (m *Metrics) IncRetry(operation string) {
	if m == nil {
		return
	}
	m.RemoteRetriesTotal.WithLabelValues(operation).Inc()
}

// ObserveCache 记录缓存命中或未命中
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RateCacheRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveCommand 记录 CLI 命令，failed 表示命令以错误结束
func (m *Metrics) ObserveCommand(failed bool) {
	if m == nil {
		return
	}
	m.CommandsProcessed.Inc()
	if failed {
		m.CommandsErrors.Inc()
	}
}

// IncOrdersCreated 订单创建成功
func (m *Metrics) IncOrdersCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

// IncOrdersCancelled 订单撤销成功
func (m *Metrics) IncOrdersCancelled() {
	if m == nil {
		return
	}
	m.OrdersCancelled.Inc()
}

// StartHTTPServer 启动 Prometheus HTTP 服务器，ctx 结束时关闭
func StartHTTPServer(ctx context.Context, port int, path string, gatherer prometheus.Gatherer) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info(ctx, "Starting Prometheus HTTP server", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Prometheus HTTP server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv
}
