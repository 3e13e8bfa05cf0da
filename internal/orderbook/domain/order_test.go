package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderIsValidAt(t *testing.T) {
	now := time.Date(2025, time.March, 15, 18, 30, 0, 0, time.UTC)
	cases := []struct {
		validUntil string
		want       bool
	}{
		{"15.03.2025", true},
		{"16.03.2025", true},
		{"14.03.2025", false},
		{"2025-03-16", false},
		{"31.02.2025", false},
		{"", false},
	}
	for _, tc := range cases {
		o := &Order{InvestmentCcy: "EUR", CounterCcy: "USD", ValidUntil: tc.validUntil}
		if got := o.IsValidAt(now); got != tc.want {
			t.Errorf("IsValidAt(%q) = %v, want %v", tc.validUntil, got, tc.want)
		}
	}
}

func TestOrderDistanceFromMarket(t *testing.T) {
	o := NewOrder(OrderSideBuy, "eur", "usd", d("1.2000"), "01.01.2030")
	got := o.DistanceFromMarket(decimal.NewNullDecimal(d("1.21")))
	if !got.Equal(d("0.01")) {
		t.Fatalf("distance = %s", got)
	}
	got = o.DistanceFromMarket(decimal.NewNullDecimal(d("1.15")))
	if !got.Equal(d("0.05")) {
		t.Fatalf("distance = %s", got)
	}
	if !o.DistanceFromMarket(decimal.NullDecimal{}).IsZero() {
		t.Fatal("missing market rate should give zero distance")
	}
	noLimit := &Order{InvestmentCcy: "EUR", CounterCcy: "USD"}
	if !noLimit.DistanceFromMarket(decimal.NewNullDecimal(d("1.21"))).IsZero() {
		t.Fatal("missing limit should give zero distance")
	}
}

func TestOrderPairAndSide(t *testing.T) {
	o := NewOrder(OrderSideSell, " gbp", "jpy ", d("190"), "01.01.2030")
	if o.Side() != OrderSideSell || o.Buy {
		t.Fatalf("side = %s", o.Side())
	}
	p, err := o.CurrencyPair()
	if err != nil || p.String() != "GBP/JPY" {
		t.Fatalf("pair = %v, %v", p, err)
	}

	bad := &Order{InvestmentCcy: "usd", CounterCcy: "USD"}
	if _, err := bad.CurrencyPair(); !errors.Is(err, ErrInvalidPair) {
		t.Fatalf("expected ErrInvalidPair, got %v", err)
	}
	if bad.PairLabel() != "USD/USD" {
		t.Fatalf("label = %s", bad.PairLabel())
	}
}

func TestParseOrderSide(t *testing.T) {
	if s, err := ParseOrderSide("BUY"); err != nil || s != OrderSideBuy {
		t.Fatalf("got %s, %v", s, err)
	}
	if s, err := ParseOrderSide(" sell "); err != nil || s != OrderSideSell {
		t.Fatalf("got %s, %v", s, err)
	}
	if _, err := ParseOrderSide("hold"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
