package repository

import (
	"context"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/infrastructure/client"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// HTTPRateRepository 基于订单服务客户端的报价仓储
type HTTPRateRepository struct {
	client *client.OrderServiceClient
}

// NewHTTPRateRepository 创建报价仓储
func NewHTTPRateRepository(c *client.OrderServiceClient) *HTTPRateRepository {
	return &HTTPRateRepository{client: c}
}

// Snapshot 报价快照，不合法的报价行被跳过
func (r *HTTPRateRepository) Snapshot(ctx context.Context) ([]domain.FXRate, error) {
	dtos, err := r.client.RateSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	rates := make([]domain.FXRate, 0, len(dtos))
	for _, dto := range dtos {
		rate, err := toDomainRate(dto)
		if err != nil {
			logger.Warn(ctx, "Skipping invalid rate from snapshot",
				"ccy1", dto.CcyPair.Ccy1,
				"ccy2", dto.CcyPair.Ccy2,
				"error", err,
			)
			continue
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// SupportedPairs 支持的货币对，不合法的记录被跳过
func (r *HTTPRateRepository) SupportedPairs(ctx context.Context) ([]domain.CurrencyPair, error) {
	dtos, err := r.client.SupportedCurrencyPairs(ctx)
	if err != nil {
		return nil, err
	}
	pairs := make([]domain.CurrencyPair, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomainPair(dto)
		if err != nil {
			logger.Warn(ctx, "Skipping invalid currency pair", "ccy1", dto.Ccy1, "ccy2", dto.Ccy2, "error", err)
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// Healthy 连通性探测
func (r *HTTPRateRepository) Healthy(ctx context.Context) bool {
	return r.client.Healthy(ctx)
}
