package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FXRate 货币对的买卖报价，bid/ask 固定 6 位小数
type FXRate struct {
	pair CurrencyPair
	bid  decimal.Decimal
	ask  decimal.Decimal
}

// NewFXRate 创建报价，四舍五入后要求 bid <= ask
func NewFXRate(pair CurrencyPair, bid, ask decimal.Decimal) (FXRate, error) {
	if pair.IsZero() {
		return FXRate{}, fmt.Errorf("%w: rate requires a currency pair", ErrInvalidPair)
	}
	b := bid.Round(PriceScale)
	a := ask.Round(PriceScale)
	if b.GreaterThan(a) {
		return FXRate{}, fmt.Errorf("%w: bid %s greater than ask %s for %s",
			ErrInvalidQuote, b.StringFixed(PriceScale), a.StringFixed(PriceScale), pair)
	}
	return FXRate{pair: pair, bid: b, ask: a}, nil
}

// Pair 货币对
func (r FXRate) Pair() CurrencyPair { return r.pair }

// Bid 买价
func (r FXRate) Bid() decimal.Decimal { return r.bid }

// Ask 卖价
func (r FXRate) Ask() decimal.Decimal { return r.ask }

// Mid 中间价 (bid+ask)/2
func (r FXRate) Mid() decimal.Decimal {
	return divide(r.bid.Add(r.ask), two).Round(PriceScale)
}

// Spread 点差 ask-bid
func (r FXRate) Spread() decimal.Decimal {
	return r.ask.Sub(r.bid).Round(PriceScale)
}

// SpreadPercentage 点差占中间价的百分比，中间价为 0 时返回 0
func (r FXRate) SpreadPercentage() decimal.Decimal {
	mid := r.Mid()
	if mid.IsZero() {
		return decimal.Zero
	}
	return divide(r.Spread(), mid).Mul(hundred).Round(PercentScale)
}

// Inverse 反向报价：bid' = 1/ask, ask' = 1/bid
func (r FXRate) Inverse() (FXRate, error) {
	if r.bid.IsZero() || r.ask.IsZero() {
		return FXRate{}, fmt.Errorf("%w: cannot invert %s with a zero side", ErrInvalidQuote, r.pair)
	}
	return NewFXRate(r.pair.Inverse(), divide(decimal.NewFromInt(1), r.ask), divide(decimal.NewFromInt(1), r.bid))
}

// RateForSide 吃单方向对应的价格：买入取 ask，卖出取 bid
func (r FXRate) RateForSide(isBuy bool) decimal.Decimal {
	if isBuy {
		return r.ask
	}
	return r.bid
}

// IsValid 两端为正且 bid <= ask
func (r FXRate) IsValid() bool {
	return !r.pair.IsZero() && r.bid.IsPositive() && r.ask.IsPositive() && r.bid.LessThanOrEqual(r.ask)
}

func (r FXRate) String() string {
	return fmt.Sprintf("%s bid=%s ask=%s", r.pair, r.bid.StringFixed(PriceScale), r.ask.StringFixed(PriceScale))
}
