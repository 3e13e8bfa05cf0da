package simulator

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

var referenceMids = map[string]float64{
	"EUR/USD": 1.0850,
	"GBP/USD": 1.2650,
	"USD/JPY": 149.50,
	"USD/CHF": 0.8850,
	"EUR/GBP": 0.8580,
	"AUD/USD": 0.6550,
	"USD/CAD": 1.3550,
}

// halfSpread 相对中间价的半点差（1bp）
const halfSpread = 0.0001

// QuoteGenerator 以有界随机游走生成报价
type QuoteGenerator struct {
	mu         sync.Mutex
	pairs      []domain.CurrencyPair
	mids       map[domain.CurrencyPair]float64
	anchors    map[domain.CurrencyPair]float64
	volatility float64
	rng        *rand.Rand
}

// NewQuoteGenerator 创建报价生成器，volatility 为单步相对波动上限
func NewQuoteGenerator(pairs []string, volatility float64, seed uint64) (*QuoteGenerator, error) {
	g := &QuoteGenerator{
		mids:       make(map[domain.CurrencyPair]float64),
		anchors:    make(map[domain.CurrencyPair]float64),
		volatility: volatility,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for _, s := range pairs {
		p, err := domain.ParseCurrencyPair(s)
		if err != nil {
			return nil, fmt.Errorf("simulator pair %q: %w", s, err)
		}
		if _, dup := g.mids[p]; dup {
			continue
		}
		mid, ok := referenceMids[p.String()]
		if !ok {
			mid = 1.0
		}
		g.pairs = append(g.pairs, p)
		g.mids[p] = mid
		g.anchors[p] = mid
	}
	return g, nil
}

// Pairs 支持的货币对
func (g *QuoteGenerator) Pairs() []domain.CurrencyPair {
	out := make([]domain.CurrencyPair, len(g.pairs))
	copy(out, g.pairs)
	return out
}

// Next 推进一步并返回全部报价，中间价不会偏离初始值 10% 以上
func (g *QuoteGenerator) Next() []domain.FXRate {
	g.mu.Lock()
	defer g.mu.Unlock()

	rates := make([]domain.FXRate, 0, len(g.pairs))
	for _, p := range g.pairs {
		mid := g.mids[p] * (1 + g.volatility*(2*g.rng.Float64()-1))
		anchor := g.anchors[p]
		mid = min(max(mid, anchor*0.9), anchor*1.1)
		g.mids[p] = mid

		m := decimal.NewFromFloat(mid)
		h := m.Mul(decimal.NewFromFloat(halfSpread))
		rate, err := domain.NewFXRate(p, m.Sub(h), m.Add(h))
		if err != nil {
			continue
		}
		rates = append(rates, rate)
	}
	return rates
}
