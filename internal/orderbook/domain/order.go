package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidUntilLayout 有效期格式 dd.MM.yyyy
const ValidUntilLayout = "02.01.2006"

// OrderSide 订单方向
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order 限价单。ID 在远程服务创建前为空
type Order struct {
	ID            string
	InvestmentCcy string
	CounterCcy    string
	Buy           bool
	Limit         decimal.NullDecimal
	ValidUntil    string
}

// NewOrder 创建待提交的订单
func NewOrder(side OrderSide, investmentCcy, counterCcy string, limit decimal.Decimal, validUntil string) *Order {
	return &Order{
		InvestmentCcy: strings.ToUpper(strings.TrimSpace(investmentCcy)),
		CounterCcy:    strings.ToUpper(strings.TrimSpace(counterCcy)),
		Buy:           side == OrderSideBuy,
		Limit:         decimal.NewNullDecimal(limit),
		ValidUntil:    strings.TrimSpace(validUntil),
	}
}

// ParseOrderSide 解析 buy/sell，大小写不敏感
func ParseOrderSide(s string) (OrderSide, error) {
	switch OrderSide(strings.ToLower(strings.TrimSpace(s))) {
	case OrderSideBuy:
		return OrderSideBuy, nil
	case OrderSideSell:
		return OrderSideSell, nil
	}
	return "", fmt.Errorf("%w: order type %q, expected buy or sell", ErrInvalidFormat, s)
}

// Side 订单方向
func (o *Order) Side() OrderSide {
	if o.Buy {
		return OrderSideBuy
	}
	return OrderSideSell
}

// HasID 是否已由远程服务分配 ID
func (o *Order) HasID() bool {
	return o.ID != ""
}

// CurrencyPair 由投资货币与计价货币构成的货币对
func (o *Order) CurrencyPair() (CurrencyPair, error) {
	return NewCurrencyPair(o.InvestmentCcy, o.CounterCcy)
}

// PairLabel 货币对展示文本，货币对不合法时退化为原始拼接
func (o *Order) PairLabel() string {
	if p, err := o.CurrencyPair(); err == nil {
		return p.String()
	}
	return strings.ToUpper(strings.TrimSpace(o.InvestmentCcy)) + "/" + strings.ToUpper(strings.TrimSpace(o.CounterCcy))
}

// ValidUntilDate 解析有效期
func (o *Order) ValidUntilDate(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(ValidUntilLayout, strings.TrimSpace(o.ValidUntil), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: valid until %q, expected dd.MM.yyyy", ErrInvalidFormat, o.ValidUntil)
	}
	return t, nil
}

// IsValid 有效期可解析且不早于今天
func (o *Order) IsValid() bool {
	return o.IsValidAt(time.Now())
}

// IsValidAt 以 now 所在日期为"今天"判断有效期
func (o *Order) IsValidAt(now time.Time) bool {
	until, err := o.ValidUntilDate(now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return !until.Before(today)
}

// DistanceFromMarket |limit - market|，任一方缺失时为 0
func (o *Order) DistanceFromMarket(market decimal.NullDecimal) decimal.Decimal {
	if !o.Limit.Valid || !market.Valid {
		return decimal.Zero
	}
	return o.Limit.Decimal.Sub(market.Decimal).Abs()
}

func (o *Order) String() string {
	limit := "-"
	if o.Limit.Valid {
		limit = o.Limit.Decimal.String()
	}
	return fmt.Sprintf("Order{id=%s, %s %s/%s, limit=%s, validUntil=%s}",
		o.ID, o.Side(), o.InvestmentCcy, o.CounterCcy, limit, o.ValidUntil)
}
