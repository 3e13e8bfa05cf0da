package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

func TestRateServiceGetCurrentRates(t *testing.T) {
	repo := &fakeRateRepo{rates: []domain.FXRate{
		mustRate(t, "EUR", "USD", "1.19", "1.21"),
		mustRate(t, "GBP", "USD", "1.30", "1.32"),
	}}
	svc := NewRateService(repo)
	ctx := context.Background()

	rates, err := svc.GetCurrentRates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rates) != 2 || rates[0].Pair().String() != "EUR/USD" {
		t.Fatalf("rates = %+v", rates)
	}

	async, err := svc.GetCurrentRatesAsync(ctx).Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(async) != len(rates) {
		t.Fatalf("async rates = %+v", async)
	}

	pairs, err := svc.GetSupportedPairsAsync(ctx).Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 || pairs[1].String() != "GBP/USD" {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestRateServiceUnavailable(t *testing.T) {
	cause := fmt.Errorf("%w: after 3 attempts: connection refused", domain.ErrServiceUnavailable)
	svc := NewRateService(&fakeRateRepo{err: cause})
	ctx := context.Background()

	rates, err := svc.GetCurrentRates(ctx)
	if !errors.Is(err, domain.ErrServiceUnavailable) || rates != nil {
		t.Fatalf("GetCurrentRates = %v, %v", rates, err)
	}
	if _, err := svc.GetCurrentRatesAsync(ctx).Await(ctx); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("GetCurrentRatesAsync err = %v", err)
	}
	if _, err := svc.GetSupportedPairs(ctx); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("GetSupportedPairs err = %v", err)
	}
}
