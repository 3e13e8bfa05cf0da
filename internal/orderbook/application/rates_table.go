package application

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

// RateRow 报价表的一行
type RateRow struct {
	Pair             string
	Bid              decimal.Decimal
	Ask              decimal.Decimal
	Mid              decimal.Decimal
	SpreadPercentage decimal.Decimal
}

// BuildRatesTable 按货币对文本排序的报价表
func BuildRatesTable(rates []domain.FXRate) []RateRow {
	rows := make([]RateRow, len(rates))
	for i, r := range rates {
		rows[i] = RateRow{
			Pair:             r.Pair().String(),
			Bid:              r.Bid(),
			Ask:              r.Ask(),
			Mid:              r.Mid(),
			SpreadPercentage: r.SpreadPercentage(),
		}
	}
	slices.SortStableFunc(rows, func(a, b RateRow) int { return strings.Compare(a.Pair, b.Pair) })
	return rows
}
