// Package config 提供 TOML 配置加载、环境变量与命令行参数覆盖以及 schema 校验
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// EnvPrefix 环境变量前缀，例如 FXOB_ORDER_SERVICE_BASE_URL
const EnvPrefix = "FXOB"

// Config 客户端完整配置
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name" validate:"required"`
	// 版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment" validate:"oneof=dev staging prod"`
	// 远程订单服务
	OrderService OrderServiceConfig `mapstructure:"order_service"`
	// HTTP 客户端
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	// 汇率缓存
	Cache CacheConfig `mapstructure:"cache"`
	// Redis（缓存或限流后端为 redis 时使用）
	Redis RedisConfig `mapstructure:"redis"`
	// 出站请求限流
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// 熔断
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	// 订单审计事件
	Events EventsConfig `mapstructure:"events"`
	// 日志
	Logger logger.Config `mapstructure:"logger"`
	// 指标
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 本地订单服务模拟器
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// OrderServiceConfig 远程订单服务配置
type OrderServiceConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"min=1,max=10"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"min=1ms"`
}

// HTTPClientConfig HTTP 客户端配置
type HTTPClientConfig struct {
	ConnectTimeout        time.Duration `mapstructure:"connect_timeout" validate:"min=1s"`
	ResponseTimeout       time.Duration `mapstructure:"response_timeout" validate:"min=1s"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout" validate:"min=1s"`
	MaxConnections        int           `mapstructure:"max_connections" validate:"min=1,max=1000"`
	MaxConnectionsPerHost int           `mapstructure:"max_connections_per_host" validate:"min=1,max=100"`
}

// CacheConfig 汇率快照缓存配置
type CacheConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Backend          string        `mapstructure:"backend" validate:"oneof=memory redis"`
	MaxSize          int           `mapstructure:"max_size" validate:"min=10,max=10000"`
	ExpireAfterWrite time.Duration `mapstructure:"expire_after_write" validate:"min=1s"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"min=0"`
	PoolSize     int           `mapstructure:"pool_size" validate:"min=1"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RateLimitConfig 出站限流配置，rps 为 0 表示不限流
type RateLimitConfig struct {
	Backend string  `mapstructure:"backend" validate:"oneof=local redis"`
	RPS     float64 `mapstructure:"rps" validate:"min=0"`
	Burst   int     `mapstructure:"burst" validate:"min=1"`
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxFailures      uint32        `mapstructure:"max_failures" validate:"min=1"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout" validate:"min=1s"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests" validate:"min=1"`
}

// EventsConfig 审计事件配置
type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `mapstructure:"topic" validate:"required_if=Enabled true"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// Prometheus 监听端口
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
	// 指标路径
	Path string `mapstructure:"path" validate:"startswith=/"`
}

// SimulatorConfig 订单服务模拟器配置
type SimulatorConfig struct {
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port" validate:"min=1,max=65535"`
	Pairs      []string `mapstructure:"pairs" validate:"min=1"`
	Volatility float64  `mapstructure:"volatility" validate:"gt=0,lt=1"`
}

// flagKeys 命令行参数名与配置键的映射
var flagKeys = map[string]string{
	"base-url":       "order_service.base_url",
	"retry-attempts": "order_service.retry_attempts",
	"log-level":      "logger.level",
	"sim-port":       "simulator.port",
}

// BindFlags 在 FlagSet 上注册可覆盖配置的命令行参数
func BindFlags(fs *pflag.FlagSet) {
	fs.String("base-url", "", "order service base URL")
	fs.Int("retry-attempts", 0, "attempts per remote call (1-10)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Int("sim-port", 0, "simulator listen port")
}

// Load 从 TOML 文件加载配置，文件必须存在
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	return load(configPath, flags, true)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在时只使用默认值
func LoadWithDefaults(configPath string, flags *pflag.FlagSet) (*Config, error) {
	return load(configPath, flags, false)
}

func load(configPath string, flags *pflag.FlagSet, mustExist bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			if mustExist || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// 环境变量覆盖（使用 _ 替代 .）
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			// 只有显式传入的参数才覆盖
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 规范化并校验配置
func (c *Config) Validate() error {
	c.OrderService.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.OrderService.BaseURL), "/")
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.HTTPClient.MaxConnectionsPerHost > c.HTTPClient.MaxConnections {
		return fmt.Errorf("http_client.max_connections_per_host (%d) exceeds max_connections (%d)",
			c.HTTPClient.MaxConnectionsPerHost, c.HTTPClient.MaxConnections)
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "fx-orderbook")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("environment", "dev")

	v.SetDefault("order_service.base_url", "http://localhost:8888")
	v.SetDefault("order_service.retry_attempts", 3)
	v.SetDefault("order_service.retry_delay", 500*time.Millisecond)

	v.SetDefault("http_client.connect_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 60*time.Second)
	v.SetDefault("http_client.idle_timeout", 30*time.Second)
	v.SetDefault("http_client.max_connections", 50)
	v.SetDefault("http_client.max_connections_per_host", 10)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.expire_after_write", 5*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("rate_limit.backend", "local")
	v.SetDefault("rate_limit.rps", 0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.max_failures", 5)
	v.SetDefault("circuit_breaker.open_timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.half_open_requests", 1)

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "fx.orders.audit")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "file")
	v.SetDefault("logger.file_path", "logs/fxorderbook.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("simulator.host", "0.0.0.0")
	v.SetDefault("simulator.port", 8888)
	v.SetDefault("simulator.pairs", []string{"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF", "EUR/GBP"})
	v.SetDefault("simulator.volatility", 0.001)
}
