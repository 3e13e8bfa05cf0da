package repository

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/infrastructure/client"
)

func toDomainOrder(dto client.OrderDTO) (*domain.Order, error) {
	o := &domain.Order{
		InvestmentCcy: dto.InvestmentCcy,
		CounterCcy:    dto.CounterCcy,
		Buy:           dto.Buy,
		ValidUntil:    dto.ValidUntil,
	}
	if dto.ID != nil {
		o.ID = *dto.ID
	}
	if dto.Limit != nil {
		limit, err := decimal.NewFromString(dto.Limit.String())
		if err != nil {
			return nil, fmt.Errorf("%w: limit %q", domain.ErrInvalidFormat, dto.Limit.String())
		}
		o.Limit = decimal.NewNullDecimal(limit)
	}
	return o, nil
}

func fromDomainOrder(o *domain.Order) client.OrderDTO {
	dto := client.OrderDTO{
		InvestmentCcy: o.InvestmentCcy,
		Buy:           o.Buy,
		CounterCcy:    o.CounterCcy,
		ValidUntil:    o.ValidUntil,
	}
	if o.ID != "" {
		id := o.ID
		dto.ID = &id
	}
	if o.Limit.Valid {
		n := json.Number(o.Limit.Decimal.String())
		dto.Limit = &n
	}
	return dto
}

func toDomainPair(dto client.CurrencyPairDTO) (domain.CurrencyPair, error) {
	return domain.NewCurrencyPair(dto.Ccy1, dto.Ccy2)
}

func toDomainRate(dto client.FXRateDTO) (domain.FXRate, error) {
	pair, err := toDomainPair(dto.CcyPair)
	if err != nil {
		return domain.FXRate{}, err
	}
	return domain.NewFXRate(pair, dto.Bid, dto.Ask)
}
