package client

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderDTO 订单服务的订单报文
type OrderDTO struct {
	ID            *string      `json:"id"`
	InvestmentCcy string       `json:"investmentCcy"`
	Buy           bool         `json:"buy"`
	CounterCcy    string       `json:"counterCcy"`
	Limit         *json.Number `json:"limit"`
	ValidUntil    string       `json:"validUntil"`
}

// CurrencyPairDTO 货币对报文
type CurrencyPairDTO struct {
	Ccy1 string `json:"ccy1"`
	Ccy2 string `json:"ccy2"`
}

// FXRateDTO 报价报文，bid/ask 接受 JSON 数字或字符串
type FXRateDTO struct {
	CcyPair CurrencyPairDTO `json:"ccyPair"`
	Bid     decimal.Decimal `json:"bid"`
	Ask     decimal.Decimal `json:"ask"`
}
