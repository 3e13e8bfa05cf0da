package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/cache"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/metrics"
)

const (
	snapshotKey = "rates:snapshot"
	pairsKey    = "rates:pairs"
)

type rateRecord struct {
	Ccy1 string          `json:"ccy1"`
	Ccy2 string          `json:"ccy2"`
	Bid  decimal.Decimal `json:"bid"`
	Ask  decimal.Decimal `json:"ask"`
}

type pairRecord struct {
	Ccy1 string `json:"ccy1"`
	Ccy2 string `json:"ccy2"`
}

// CachedRateRepository 报价仓储缓存装饰器，缓存故障时直接回源
type CachedRateRepository struct {
	source     domain.RateRepository
	cache      cache.Cache
	expiration time.Duration
	metrics    *metrics.Metrics
}

// NewCachedRateRepository 创建缓存装饰器
func NewCachedRateRepository(source domain.RateRepository, c cache.Cache, expiration time.Duration, m *metrics.Metrics) *CachedRateRepository {
	return &CachedRateRepository{source: source, cache: c, expiration: expiration, metrics: m}
}

// Snapshot 报价快照
func (r *CachedRateRepository) Snapshot(ctx context.Context) ([]domain.FXRate, error) {
	var records []rateRecord
	if r.lookup(ctx, snapshotKey, &records) {
		rates := make([]domain.FXRate, 0, len(records))
		for _, rec := range records {
			pair, err := domain.NewCurrencyPair(rec.Ccy1, rec.Ccy2)
			if err != nil {
				continue
			}
			rate, err := domain.NewFXRate(pair, rec.Bid, rec.Ask)
			if err != nil {
				continue
			}
			rates = append(rates, rate)
		}
		return rates, nil
	}

	rates, err := r.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	records = make([]rateRecord, len(rates))
	for i, rate := range rates {
		records[i] = rateRecord{Ccy1: rate.Pair().Ccy1(), Ccy2: rate.Pair().Ccy2(), Bid: rate.Bid(), Ask: rate.Ask()}
	}
	r.store(ctx, snapshotKey, records)
	return rates, nil
}

// SupportedPairs 支持的货币对
func (r *CachedRateRepository) SupportedPairs(ctx context.Context) ([]domain.CurrencyPair, error) {
	var records []pairRecord
	if r.lookup(ctx, pairsKey, &records) {
		pairs := make([]domain.CurrencyPair, 0, len(records))
		for _, rec := range records {
			if p, err := domain.NewCurrencyPair(rec.Ccy1, rec.Ccy2); err == nil {
				pairs = append(pairs, p)
			}
		}
		return pairs, nil
	}

	pairs, err := r.source.SupportedPairs(ctx)
	if err != nil {
		return nil, err
	}
	records = make([]pairRecord, len(pairs))
	for i, p := range pairs {
		records[i] = pairRecord{Ccy1: p.Ccy1(), Ccy2: p.Ccy2()}
	}
	r.store(ctx, pairsKey, records)
	return pairs, nil
}

// Invalidate 清除缓存的快照
func (r *CachedRateRepository) Invalidate(ctx context.Context) error {
	return r.cache.Delete(ctx, snapshotKey, pairsKey)
}

func (r *CachedRateRepository) lookup(ctx context.Context, key string, dest any) bool {
	hit, err := r.cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warn(ctx, "Rate cache read failed, falling back to order service", "key", key, "error", err)
		hit = false
	}
	r.metrics.ObserveCache(hit)
	logger.Debug(ctx, "Rate cache lookup", "key", key, "hit", hit)
	return hit
}

func (r *CachedRateRepository) store(ctx context.Context, key string, value any) {
	if err := r.cache.SetJSON(ctx, key, value, r.expiration); err != nil {
		logger.Warn(ctx, "Rate cache write failed", "key", key, "error", err)
	}
}
