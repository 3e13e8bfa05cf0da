package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.toml"), nil)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.OrderService.BaseURL != "http://localhost:8888" {
		t.Errorf("base url = %q", cfg.OrderService.BaseURL)
	}
	if cfg.OrderService.RetryAttempts != 3 || cfg.OrderService.RetryDelay != 500*time.Millisecond {
		t.Errorf("retry = %d/%v", cfg.OrderService.RetryAttempts, cfg.OrderService.RetryDelay)
	}
	if cfg.Cache.MaxSize != 1000 || cfg.Cache.ExpireAfterWrite != 5*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.HTTPClient.MaxConnections != 50 || cfg.HTTPClient.MaxConnectionsPerHost != 10 {
		t.Errorf("http client = %+v", cfg.HTTPClient)
	}
}

func TestLoadRequiresFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml"), nil); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
service_name = "fx-orderbook"
environment = "staging"

[order_service]
base_url = " http://orders.internal:9000/ "
retry_attempts = 5
retry_delay = "250ms"

[cache]
backend = "memory"
max_size = 20
expire_after_write = "30s"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OrderService.BaseURL != "http://orders.internal:9000" {
		t.Errorf("base url not normalized: %q", cfg.OrderService.BaseURL)
	}
	if cfg.OrderService.RetryAttempts != 5 || cfg.OrderService.RetryDelay != 250*time.Millisecond {
		t.Errorf("retry = %d/%v", cfg.OrderService.RetryAttempts, cfg.OrderService.RetryDelay)
	}
	if cfg.Cache.MaxSize != 20 || cfg.Cache.ExpireAfterWrite != 30*time.Second {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Environment != "staging" {
		t.Errorf("environment = %q", cfg.Environment)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FXOB_ORDER_SERVICE_BASE_URL", "http://env-host:1234")
	t.Setenv("FXOB_ORDER_SERVICE_RETRY_ATTEMPTS", "7")

	cfg, err := LoadWithDefaults("", nil)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.OrderService.BaseURL != "http://env-host:1234" || cfg.OrderService.RetryAttempts != 7 {
		t.Fatalf("env not applied: %+v", cfg.OrderService)
	}
}

func TestValidationBounds(t *testing.T) {
	cases := map[string]string{
		"FXOB_ORDER_SERVICE_RETRY_ATTEMPTS": "11",
		"FXOB_CACHE_MAX_SIZE":               "5",
		"FXOB_ORDER_SERVICE_BASE_URL":       "   ",
		"FXOB_HTTP_CLIENT_MAX_CONNECTIONS":  "5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := LoadWithDefaults("", nil); err == nil {
				t.Fatalf("expected validation error for %s=%q", key, value)
			}
		})
	}
}

func TestFlagOverride(t *testing.T) {
	t.Setenv("FXOB_ORDER_SERVICE_BASE_URL", "http://env-host:1234")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"--base-url", "http://flag-host:5555/", "--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithDefaults("", fs)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.OrderService.BaseURL != "http://flag-host:5555" {
		t.Errorf("flag should win over env, got %q", cfg.OrderService.BaseURL)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logger.Level)
	}
	if cfg.OrderService.RetryAttempts != 3 {
		t.Errorf("unset flag must not override default, got %d", cfg.OrderService.RetryAttempts)
	}
}
