package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/metrics"
)

type fakeSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
	err   error
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, d)
	return f.err
}

func newTestClient(t *testing.T, srv *httptest.Server, s *fakeSleeper, mutate ...func(*Options)) *OrderServiceClient {
	t.Helper()
	opts := Options{
		BaseURL:         srv.URL + "/",
		RetryAttempts:   3,
		RetryDelay:      100 * time.Millisecond,
		ConnectTimeout:  time.Second,
		ResponseTimeout: 5 * time.Second,
		Sleep:           s.sleep,
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := NewOrderServiceClient(opts)
	if err != nil {
		t.Fatalf("NewOrderServiceClient failed: %v", err)
	}
	return c
}

func TestNewOrderServiceClientBaseURL(t *testing.T) {
	c, err := NewOrderServiceClient(Options{BaseURL: "  http://localhost:8888/ "})
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != "http://localhost:8888" {
		t.Fatalf("base url = %q", c.BaseURL())
	}
	if _, err := NewOrderServiceClient(Options{BaseURL: "   "}); err == nil {
		t.Fatal("expected error for blank base url")
	}
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rateSnapshot" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[{"ccyPair":{"ccy1":"EUR","ccy2":"USD"},"bid":1.19,"ask":1.21}]`)
	}))
	defer srv.Close()

	s := &fakeSleeper{}
	m := metrics.New()
	c := newTestClient(t, srv, s, func(o *Options) { o.Metrics = m })

	rates, err := c.RateSnapshot(context.Background())
	if err != nil {
		t.Fatalf("RateSnapshot failed: %v", err)
	}
	if len(rates) != 1 || rates[0].CcyPair.Ccy1 != "EUR" || rates[0].Bid.String() != "1.19" {
		t.Fatalf("unexpected rates %+v", rates)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(s.waits) != 2 || s.waits[0] != 100*time.Millisecond || s.waits[1] != 200*time.Millisecond {
		t.Fatalf("unexpected backoff %v", s.waits)
	}
	if got := testutil.ToFloat64(m.RemoteRetriesTotal.WithLabelValues(OpRateSnapshot)); got != 2 {
		t.Fatalf("retries metric = %v", got)
	}
	if got := testutil.ToFloat64(m.RemoteRequestsTotal.WithLabelValues(OpRateSnapshot, "success")); got != 1 {
		t.Fatalf("success metric = %v", got)
	}
}

func TestRetryExhaustedSurfacesServiceUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := &fakeSleeper{}
	c := newTestClient(t, srv, s)

	_, err := c.RetrieveOrders(context.Background())
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError || se.Operation != OpRetrieveOrders {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if !errors.Is(err, domain.ErrRemoteRejected) {
		t.Fatalf("last cause should classify as remote rejection: %v", err)
	}
	if calls != 3 || len(s.waits) != 2 {
		t.Fatalf("calls=%d sleeps=%d", calls, len(s.waits))
	}
}

func TestInterruptedBackoffStopsRetrying(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := &fakeSleeper{err: context.Canceled}
	c := newTestClient(t, srv, s)

	_, err := c.SupportedCurrencyPairs(context.Background())
	if !errors.Is(err, domain.ErrServiceUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected interrupted ServiceUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("interrupt must not be retried, got %d calls", calls)
	}
}

func TestCreateOrderWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/createOrder" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if raw["id"] != nil || raw["investmentCcy"] != "EUR" || raw["buy"] != true || raw["limit"] != 1.2 || raw["validUntil"] != "01.01.2030" {
			t.Errorf("unexpected body %v", raw)
		}
		raw["id"] = "ord-1"
		_ = json.NewEncoder(w).Encode(raw)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeSleeper{})
	limit := json.Number("1.2")
	created, err := c.CreateOrder(context.Background(), OrderDTO{
		InvestmentCcy: "EUR", CounterCcy: "USD", Buy: true, Limit: &limit, ValidUntil: "01.01.2030",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if created.ID == nil || *created.ID != "ord-1" || created.Limit == nil || created.Limit.String() != "1.2" {
		t.Fatalf("unexpected created order %+v", created)
	}
}

func TestCancelOrderOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if err := json.NewDecoder(r.Body).Decode(&id); err != nil {
			t.Errorf("cancel body must be a JSON string: %v", err)
		}
		if id == "known" {
			_, _ = io.WriteString(w, "true")
			return
		}
		_, _ = io.WriteString(w, "false")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeSleeper{})
	ok, err := c.CancelOrder(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("cancel of unknown id: ok=%v err=%v", ok, err)
	}
	ok, err = c.CancelOrder(context.Background(), "known")
	if err != nil || !ok {
		t.Fatalf("cancel of known id: ok=%v err=%v", ok, err)
	}
}

func TestHealthy(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"ccy1":"EUR","ccy2":"USD"}]`)
	}))
	defer up.Close()
	if !newTestClient(t, up, &fakeSleeper{}).Healthy(context.Background()) {
		t.Fatal("expected healthy")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	if newTestClient(t, down, &fakeSleeper{}).Healthy(context.Background()) {
		t.Fatal("expected unhealthy")
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeSleeper{}, func(o *Options) {
		o.Breaker = &BreakerOptions{MaxFailures: 1, OpenTimeout: time.Minute, HalfOpenRequests: 1}
	})

	_, err := c.RateSnapshot(context.Background())
	if !errors.Is(err, domain.ErrServiceUnavailable) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker to surface as ServiceUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("open breaker must short-circuit, server saw %d calls", calls)
	}
}

func TestAsyncVariants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/retrieveOrders":
			_, _ = io.WriteString(w, `[{"id":"a","investmentCcy":"EUR","buy":false,"counterCcy":"USD","limit":1.1,"validUntil":"01.01.2030"}]`)
		case "/supportedCurrencyPairs":
			_, _ = io.WriteString(w, `[]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeSleeper{})
	ctx := context.Background()

	orders := c.RetrieveOrdersAsync(ctx)
	healthy := c.HealthyAsync(ctx)

	list, err := orders.Await(ctx)
	if err != nil || len(list) != 1 || *list[0].ID != "a" {
		t.Fatalf("async orders = %+v, %v", list, err)
	}
	if ok, _ := healthy.Await(ctx); !ok {
		t.Fatal("async health should be true")
	}
}
