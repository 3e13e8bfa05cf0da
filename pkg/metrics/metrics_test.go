package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	// 重复注册不报错
	if err := m.Register(reg); err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	m.ObserveRemote("rateSnapshot", "success", 20*time.Millisecond)
	m.IncRetry("rateSnapshot")
	m.IncRetry("rateSnapshot")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCommand(false)
	m.ObserveCommand(true)
	m.IncOrdersCreated()

	if got := testutil.ToFloat64(m.RemoteRequestsTotal.WithLabelValues("rateSnapshot", "success")); got != 1 {
		t.Errorf("remote requests = %v", got)
	}
	if got := testutil.ToFloat64(m.RemoteRetriesTotal.WithLabelValues("rateSnapshot")); got != 2 {
		t.Errorf("retries = %v", got)
	}
	if got := testutil.ToFloat64(m.RateCacheRequestsTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v", got)
	}
	if got := testutil.ToFloat64(m.CommandsProcessed); got != 2 {
		t.Errorf("commands processed = %v", got)
	}
	if got := testutil.ToFloat64(m.CommandsErrors); got != 1 {
		t.Errorf("command errors = %v", got)
	}
	if got := testutil.ToFloat64(m.OrdersCreated); got != 1 {
		t.Errorf("orders created = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRemote("x", "success", time.Second)
	m.IncRetry("x")
	m.ObserveCache(true)
	m.ObserveCommand(true)
	m.IncOrdersCreated()
	m.IncOrdersCancelled()
}
