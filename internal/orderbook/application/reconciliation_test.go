package application

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

func mustRate(t *testing.T, ccy1, ccy2, bid, ask string) domain.FXRate {
	t.Helper()
	r, err := domain.NewFXRate(domain.MustCurrencyPair(ccy1, ccy2), decimal.RequireFromString(bid), decimal.RequireFromString(ask))
	if err != nil {
		t.Fatalf("NewFXRate(%s/%s): %v", ccy1, ccy2, err)
	}
	return r
}

func limitOrder(id string, side domain.OrderSide, inv, ctr, limit string) *domain.Order {
	o := domain.NewOrder(side, inv, ctr, decimal.RequireFromString(limit), "31.12.2099")
	o.ID = id
	return o
}

func TestResolveDirectPair(t *testing.T) {
	idx := NewRateIndex([]domain.FXRate{mustRate(t, "EUR", "USD", "1.19", "1.21")})

	buy := limitOrder("1", domain.OrderSideBuy, "EUR", "USD", "1.20")
	rate, res := idx.Resolve(buy)
	if res != ResolutionDirect || !rate.Equal(decimal.RequireFromString("1.21")) {
		t.Fatalf("buy resolved to %s (%s), want 1.21 direct", rate, res)
	}

	sell := limitOrder("2", domain.OrderSideSell, "EUR", "USD", "1.20")
	rate, res = idx.Resolve(sell)
	if res != ResolutionDirect || !rate.Equal(decimal.RequireFromString("1.19")) {
		t.Fatalf("sell resolved to %s (%s), want 1.19 direct", rate, res)
	}
}

func TestResolveSynthesizedInverse(t *testing.T) {
	idx := NewRateIndex([]domain.FXRate{mustRate(t, "EUR", "USD", "1.19", "1.21")})

	buy := limitOrder("1", domain.OrderSideBuy, "USD", "EUR", "0.83")
	rate, res := idx.Resolve(buy)
	if res != ResolutionDirect {
		t.Fatalf("resolution = %s, want direct", res)
	}
	// 1 / 1.19
	if !rate.Equal(decimal.RequireFromString("0.840336")) {
		t.Fatalf("rate = %s, want 0.840336", rate)
	}

	sell := limitOrder("2", domain.OrderSideSell, "USD", "EUR", "0.83")
	rate, _ = idx.Resolve(sell)
	// 1 / 1.21
	if !rate.Equal(decimal.RequireFromString("0.826446")) {
		t.Fatalf("rate = %s, want 0.826446", rate)
	}
}

func TestResolveInversePairWhenInverseCannotBeBuilt(t *testing.T) {
	idx := NewRateIndex([]domain.FXRate{mustRate(t, "EUR", "USD", "0", "1.21")})

	buy := limitOrder("1", domain.OrderSideBuy, "USD", "EUR", "0.83")
	rate, res := idx.Resolve(buy)
	if res != ResolutionInverse {
		t.Fatalf("resolution = %s, want inverse", res)
	}
	if !rate.IsZero() {
		t.Fatalf("rate = %s, want the opposite side (bid 0)", rate)
	}
}

func TestDirectQuoteBeatsSynthesizedInverse(t *testing.T) {
	idx := NewRateIndex([]domain.FXRate{
		mustRate(t, "EUR", "USD", "1.19", "1.21"),
		mustRate(t, "USD", "EUR", "0.80", "0.82"),
	})
	rate, _ := idx.Resolve(limitOrder("1", domain.OrderSideBuy, "USD", "EUR", "0.81"))
	if !rate.Equal(decimal.RequireFromString("0.82")) {
		t.Fatalf("rate = %s, want quoted ask 0.82", rate)
	}
}

func TestResolveUnknownPair(t *testing.T) {
	idx := NewRateIndex([]domain.FXRate{mustRate(t, "EUR", "USD", "1.19", "1.21")})
	if _, res := idx.Resolve(limitOrder("1", domain.OrderSideBuy, "GBP", "JPY", "190")); res != ResolutionNone {
		t.Fatalf("resolution = %s, want none", res)
	}
	if _, res := idx.Resolve(&domain.Order{InvestmentCcy: "EUR", CounterCcy: "EUR"}); res != ResolutionNone {
		t.Fatalf("invalid pair resolved to %s", res)
	}
}

func TestBuildOrdersReportOrdering(t *testing.T) {
	rates := []domain.FXRate{
		mustRate(t, "EUR", "USD", "1.19", "1.21"),
		mustRate(t, "GBP", "USD", "1.30", "1.32"),
	}
	orders := []*domain.Order{
		limitOrder("gbp-far", domain.OrderSideBuy, "GBP", "USD", "1.00"),
		limitOrder("eur-far", domain.OrderSideBuy, "EUR", "USD", "1.10"),
		limitOrder("chf-1", domain.OrderSideBuy, "CHF", "JPY", "160"),
		limitOrder("eur-near", domain.OrderSideBuy, "EUR", "USD", "1.20"),
		limitOrder("chf-2", domain.OrderSideSell, "CHF", "JPY", "150"),
		limitOrder("gbp-near", domain.OrderSideSell, "GBP", "USD", "1.29"),
		nil,
	}

	report := BuildOrdersReport(orders, rates)

	want := []string{"chf-1", "chf-2", "eur-near", "eur-far", "gbp-near", "gbp-far"}
	if len(report.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(report.Lines), len(want))
	}
	for i, id := range want {
		if report.Lines[i].Order.ID != id {
			t.Errorf("line %d = %s, want %s", i, report.Lines[i].Order.ID, id)
		}
	}

	near := report.Lines[2]
	if !near.Priced() || !near.Distance.Decimal.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("eur-near distance = %v, want 0.01", near.Distance)
	}
	if !near.MarketRate.Decimal.Equal(decimal.RequireFromString("1.21")) {
		t.Errorf("eur-near market = %v, want 1.21", near.MarketRate)
	}
	if report.Lines[0].Priced() || report.Lines[0].MarketRate.Valid {
		t.Error("chf line must be unpriced")
	}
}

func TestBuildOrdersReportOrderWithoutLimit(t *testing.T) {
	rates := []domain.FXRate{mustRate(t, "EUR", "USD", "1.19", "1.21")}
	noLimit := &domain.Order{ID: "no-limit", InvestmentCcy: "EUR", CounterCcy: "USD", Buy: true, ValidUntil: "31.12.2099"}
	orders := []*domain.Order{
		limitOrder("far", domain.OrderSideBuy, "EUR", "USD", "2.00"),
		noLimit,
		limitOrder("near", domain.OrderSideBuy, "EUR", "USD", "1.21"),
	}

	report := BuildOrdersReport(orders, rates)
	got := []string{report.Lines[0].Order.ID, report.Lines[1].Order.ID, report.Lines[2].Order.ID}
	// 无限价订单距离为 0，但仍视为有市场价
	want := []string{"no-limit", "near", "far"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuildOrdersReportDeterministic(t *testing.T) {
	rates := []domain.FXRate{mustRate(t, "EUR", "USD", "1.19", "1.21")}
	orders := []*domain.Order{
		limitOrder("a", domain.OrderSideBuy, "EUR", "USD", "1.25"),
		limitOrder("b", domain.OrderSideBuy, "EUR", "USD", "1.17"),
		limitOrder("c", domain.OrderSideSell, "EUR", "USD", "1.15"),
		limitOrder("d", domain.OrderSideBuy, "NZD", "CAD", "0.8"),
		limitOrder("e", domain.OrderSideBuy, "NZD", "CAD", "0.9"),
	}
	first := BuildOrdersReport(orders, rates)
	for range 20 {
		again := BuildOrdersReport(orders, rates)
		for i := range first.Lines {
			if first.Lines[i].Order != again.Lines[i].Order {
				t.Fatalf("line %d differs between runs", i)
			}
		}
	}
	// a, b, c 距离均为 0.04，保持到达顺序
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if first.Lines[i].Order.ID != id {
			t.Fatalf("line %d = %s, want %s", i, first.Lines[i].Order.ID, id)
		}
	}
}

func TestBuildOrdersReportEmpty(t *testing.T) {
	if r := BuildOrdersReport(nil, nil); len(r.Lines) != 0 {
		t.Fatalf("expected empty report, got %d lines", len(r.Lines))
	}
}
