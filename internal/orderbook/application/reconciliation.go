package application

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

// Resolution 市场价的来源
type Resolution int

const (
	// ResolutionNone 快照中没有该货币对及其反向报价
	ResolutionNone Resolution = iota
	// ResolutionDirect 按订单货币对直接命中（含合成的反向报价）
	ResolutionDirect
	// ResolutionInverse 命中反向货币对，取相反方向的价格
	ResolutionInverse
)

func (r Resolution) String() string {
	switch r {
	case ResolutionDirect:
		return "direct"
	case ResolutionInverse:
		return "inverse"
	default:
		return "n/a"
	}
}

// RateIndex 货币对到报价的只读索引，同时包含每个报价的反向报价
type RateIndex map[domain.CurrencyPair]domain.FXRate

// NewRateIndex 构建双向索引；快照中直接给出的报价优先于合成的反向报价
func NewRateIndex(rates []domain.FXRate) RateIndex {
	idx := make(RateIndex, 2*len(rates))
	for _, r := range rates {
		if inv, err := r.Inverse(); err == nil {
			idx[inv.Pair()] = inv
		}
	}
	for _, r := range rates {
		idx[r.Pair()] = r
	}
	return idx
}

// Resolve 为订单找到适用的市场价
func (idx RateIndex) Resolve(order *domain.Order) (decimal.Decimal, Resolution) {
	pair, err := order.CurrencyPair()
	if err != nil {
		return decimal.Decimal{}, ResolutionNone
	}
	if r, ok := idx[pair]; ok {
		return r.RateForSide(order.Buy), ResolutionDirect
	}
	if r, ok := idx[pair.Inverse()]; ok {
		return r.RateForSide(!order.Buy), ResolutionInverse
	}
	return decimal.Decimal{}, ResolutionNone
}

// OrderReportLine 报表中的一行。Distance.Valid 为 false 表示无市场价
type OrderReportLine struct {
	Order      *domain.Order
	Pair       string
	MarketRate decimal.NullDecimal
	Distance   decimal.NullDecimal
	Resolution Resolution
}

// Priced 是否找到了市场价
func (l OrderReportLine) Priced() bool {
	return l.Distance.Valid
}

// OrdersReport 订单与市场价对账结果，按 (货币对, 距离) 排序
type OrdersReport struct {
	Lines []OrderReportLine
}

// BuildOrdersReport 对账订单与报价快照
// 排序规则：
// 1. 货币对文本升序
// 2. 同一货币对内有市场价的按距离升序
// 3. 无市场价的排在最后，保持原始顺序
func BuildOrdersReport(orders []*domain.Order, rates []domain.FXRate) OrdersReport {
	idx := NewRateIndex(rates)

	lines := make([]OrderReportLine, 0, len(orders))
	for _, o := range orders {
		if o == nil {
			continue
		}
		line := OrderReportLine{Order: o, Pair: o.PairLabel()}
		if market, res := idx.Resolve(o); res != ResolutionNone {
			line.Resolution = res
			line.MarketRate = decimal.NewNullDecimal(market)
			line.Distance = decimal.NewNullDecimal(o.DistanceFromMarket(line.MarketRate))
		}
		lines = append(lines, line)
	}

	slices.SortStableFunc(lines, compareLines)
	return OrdersReport{Lines: lines}
}

func compareLines(a, b OrderReportLine) int {
	if c := strings.Compare(a.Pair, b.Pair); c != 0 {
		return c
	}
	switch {
	case a.Priced() && b.Priced():
		return a.Distance.Decimal.Cmp(b.Distance.Decimal)
	case a.Priced():
		return -1
	case b.Priced():
		return 1
	default:
		return 0
	}
}
