// Package simulator 本地订单服务模拟器：内存订单簿与随机游走报价，用于演示与集成测试
package simulator

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/middleware"
	"github.com/wyfcoding/fxorderbook/pkg/ratelimit"
)

type wireOrder struct {
	ID            *string      `json:"id"`
	InvestmentCcy string       `json:"investmentCcy"`
	Buy           bool         `json:"buy"`
	CounterCcy    string       `json:"counterCcy"`
	Limit         *json.Number `json:"limit"`
	ValidUntil    string       `json:"validUntil"`
}

type wirePair struct {
	Ccy1 string `json:"ccy1"`
	Ccy2 string `json:"ccy2"`
}

type wireRate struct {
	CcyPair wirePair    `json:"ccyPair"`
	Bid     json.Number `json:"bid"`
	Ask     json.Number `json:"ask"`
}

// Quote 固定报价行，原样下发（不做校验）
type Quote struct {
	Ccy1 string
	Ccy2 string
	Bid  string
	Ask  string
}

// Options 模拟器参数
type Options struct {
	Pairs      []string
	Volatility float64
	Seed       uint64
	// 可选的按客户端 IP 限流
	Limiter ratelimit.RateLimiter
	Limit   ratelimit.Limit
}

// Server 订单服务模拟器
type Server struct {
	store    *OrderStore
	quotes   *QuoteGenerator
	limiter  ratelimit.RateLimiter
	limit    ratelimit.Limit
	failNext atomic.Int32

	mu     sync.RWMutex
	static []wireRate
}

// New 创建模拟器
func New(opts Options) (*Server, error) {
	q, err := NewQuoteGenerator(opts.Pairs, opts.Volatility, opts.Seed)
	if err != nil {
		return nil, err
	}
	return &Server{
		store:   NewOrderStore(),
		quotes:  q,
		limiter: opts.Limiter,
		limit:   opts.Limit,
	}, nil
}

// Store 内存订单簿
func (s *Server) Store() *OrderStore {
	return s.store
}

// SetQuotes 使用固定报价替代随机游走，nil 恢复随机游走
func (s *Server) SetQuotes(quotes []Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quotes == nil {
		s.static = nil
		return
	}
	s.static = make([]wireRate, len(quotes))
	for i, q := range quotes {
		s.static[i] = wireRate{
			CcyPair: wirePair{Ccy1: q.Ccy1, Ccy2: q.Ccy2},
			Bid:     json.Number(q.Bid),
			Ask:     json.Number(q.Ask),
		}
	}
}

// FailNext 之后的 n 个请求返回 503
func (s *Server) FailNext(n int) {
	s.failNext.Store(int32(n))
}

// Handler 构建 gin 路由
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(
		middleware.GinRequestIDMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinRecoveryMiddleware(),
		middleware.RateLimitMiddleware(s.limiter, s.limit),
		s.faultInjection(),
	)

	r.POST("/createOrder", s.createOrder)
	r.POST("/cancelOrder", s.cancelOrder)
	r.GET("/retrieveOrders", s.retrieveOrders)
	r.GET("/rateSnapshot", s.rateSnapshot)
	r.GET("/supportedCurrencyPairs", s.supportedPairs)
	return r
}

func (s *Server) faultInjection() gin.HandlerFunc {
	return func(c *gin.Context) {
		for {
			n := s.failNext.Load()
			if n <= 0 {
				break
			}
			if s.failNext.CompareAndSwap(n, n-1) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "injected failure"})
				return
			}
		}
		c.Next()
	}
}

func (s *Server) createOrder(c *gin.Context) {
	var o wireOrder
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if o.ID != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be null on creation"})
		return
	}
	o.InvestmentCcy = strings.ToUpper(strings.TrimSpace(o.InvestmentCcy))
	o.CounterCcy = strings.ToUpper(strings.TrimSpace(o.CounterCcy))
	if o.InvestmentCcy == "" || o.CounterCcy == "" || o.InvestmentCcy == o.CounterCcy {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid currencies"})
		return
	}

	created := s.store.Create(o)
	logger.Info(c.Request.Context(), "Order created", "order_id", *created.ID)
	c.JSON(http.StatusOK, created)
}

func (s *Server) cancelOrder(c *gin.Context) {
	var id string
	if err := c.ShouldBindJSON(&id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON string order id"})
		return
	}
	c.JSON(http.StatusOK, s.store.Cancel(id))
}

func (s *Server) retrieveOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) rateSnapshot(c *gin.Context) {
	s.mu.RLock()
	static := s.static
	s.mu.RUnlock()
	if static != nil {
		c.JSON(http.StatusOK, static)
		return
	}

	rates := s.quotes.Next()
	out := make([]wireRate, 0, len(rates))
	for _, r := range rates {
		out = append(out, wireRate{
			CcyPair: wirePair{Ccy1: r.Pair().Ccy1(), Ccy2: r.Pair().Ccy2()},
			Bid:     json.Number(r.Bid().StringFixed(6)),
			Ask:     json.Number(r.Ask().StringFixed(6)),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) supportedPairs(c *gin.Context) {
	pairs := s.quotes.Pairs()
	out := make([]wirePair, len(pairs))
	for i, p := range pairs {
		out[i] = wirePair{Ccy1: p.Ccy1(), Ccy2: p.Ccy2()}
	}
	c.JSON(http.StatusOK, out)
}
