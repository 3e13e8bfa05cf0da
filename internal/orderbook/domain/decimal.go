package domain

import "github.com/shopspring/decimal"

const (
	// PriceScale 价格小数位
	PriceScale = 6
	// PercentScale 百分比小数位
	PercentScale = 4
	// SignificantDigits 除法运算保留的有效数字
	SignificantDigits = 10

	divisionScale = 40
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// roundSignificant 按有效数字四舍五入（half-up，远离零）
func roundSignificant(d decimal.Decimal, digits int) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	n := d.NumDigits()
	if n <= digits {
		return d
	}
	places := -d.Exponent() - int32(n-digits)
	return d.Round(places)
}

// divide a/b，保留 SignificantDigits 位有效数字
func divide(a, b decimal.Decimal) decimal.Decimal {
	return roundSignificant(a.DivRound(b, divisionScale), SignificantDigits)
}
