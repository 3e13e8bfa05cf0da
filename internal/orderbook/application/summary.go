package application

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

// SummaryGroup 按 (投资货币, 计价货币, 方向) 聚合的订单
type SummaryGroup struct {
	InvestmentCcy string
	CounterCcy    string
	Side          domain.OrderSide
	Count         int
	// 有限价订单的平均限价，4 位小数；组内没有限价时无效
	AverageLimit decimal.NullDecimal
}

// SummaryReport 订单汇总
type SummaryReport struct {
	Groups      []SummaryGroup
	TotalOrders int
	UniquePairs int
}

const averageLimitScale = 4

type summaryKey struct {
	inv, ctr string
	side     domain.OrderSide
}

// BuildSummary 汇总订单
func BuildSummary(orders []*domain.Order) SummaryReport {
	type acc struct {
		count    int
		limits   int
		limitSum decimal.Decimal
	}
	groups := make(map[summaryKey]*acc)
	pairs := make(map[string]struct{})
	total := 0

	for _, o := range orders {
		if o == nil {
			continue
		}
		total++
		k := summaryKey{
			inv:  strings.ToUpper(strings.TrimSpace(o.InvestmentCcy)),
			ctr:  strings.ToUpper(strings.TrimSpace(o.CounterCcy)),
			side: o.Side(),
		}
		pairs[k.inv+"/"+k.ctr] = struct{}{}

		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.count++
		if o.Limit.Valid {
			a.limits++
			a.limitSum = a.limitSum.Add(o.Limit.Decimal)
		}
	}

	report := SummaryReport{TotalOrders: total, UniquePairs: len(pairs)}
	for k, a := range groups {
		g := SummaryGroup{InvestmentCcy: k.inv, CounterCcy: k.ctr, Side: k.side, Count: a.count}
		if a.limits > 0 {
			g.AverageLimit = decimal.NewNullDecimal(a.limitSum.DivRound(decimal.NewFromInt(int64(a.limits)), averageLimitScale))
		}
		report.Groups = append(report.Groups, g)
	}
	slices.SortFunc(report.Groups, func(a, b SummaryGroup) int {
		return cmp.Or(
			strings.Compare(a.InvestmentCcy, b.InvestmentCcy),
			strings.Compare(a.CounterCcy, b.CounterCcy),
			strings.Compare(string(a.Side), string(b.Side)),
		)
	})
	return report
}
