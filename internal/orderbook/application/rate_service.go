package application

import (
	"context"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/async"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// RateService 报价查询
type RateService struct {
	repo domain.RateRepository
}

// NewRateService 创建报价服务
func NewRateService(repo domain.RateRepository) *RateService {
	return &RateService{repo: repo}
}

// GetCurrentRates 当前报价快照
func (s *RateService) GetCurrentRates(ctx context.Context) ([]domain.FXRate, error) {
	rates, err := s.repo.Snapshot(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to fetch rate snapshot", "error", err)
		return nil, err
	}
	logger.Debug(ctx, "Fetched rate snapshot", "count", len(rates))
	return rates, nil
}

// GetCurrentRatesAsync 异步获取报价快照
func (s *RateService) GetCurrentRatesAsync(ctx context.Context) *async.Future[[]domain.FXRate] {
	return async.Go(ctx, s.GetCurrentRates)
}

// GetSupportedPairs 支持的货币对
func (s *RateService) GetSupportedPairs(ctx context.Context) ([]domain.CurrencyPair, error) {
	pairs, err := s.repo.SupportedPairs(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to fetch supported pairs", "error", err)
		return nil, err
	}
	return pairs, nil
}

// GetSupportedPairsAsync 异步获取支持的货币对
func (s *RateService) GetSupportedPairsAsync(ctx context.Context) *async.Future[[]domain.CurrencyPair] {
	return async.Go(ctx, s.GetSupportedPairs)
}
