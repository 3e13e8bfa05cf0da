package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/application"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/infrastructure/client"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/infrastructure/messaging"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/infrastructure/repository"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/interfaces/cli"
	"github.com/wyfcoding/fxorderbook/pkg/cache"
	"github.com/wyfcoding/fxorderbook/pkg/config"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/metrics"
	"github.com/wyfcoding/fxorderbook/pkg/mq"
	"github.com/wyfcoding/fxorderbook/pkg/ratelimit"
)

func main() {
	fs := pflag.NewFlagSet("fxorderbook", pflag.ExitOnError)
	configPath := fs.String("config", "configs/fxorderbook/config.toml", "path to config file")
	config.BindFlags(fs)
	_ = fs.Parse(os.Args[1:])

	// 1. Config
	cfg, err := config.LoadWithDefaults(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Error(context.Background(), "fx order book failed", "error", err)
		os.Exit(1)
	}
}

// run 装配依赖并运行交互式命令行，所有资源在返回前释放
func run(ctx context.Context, cfg *config.Config) error {
	logger.Info(ctx, "Starting fx order book",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
		"base_url", cfg.OrderService.BaseURL,
	)

	// 3. Metrics
	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.Metrics.Enabled {
		metrics.StartHTTPServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path, prometheus.DefaultGatherer)
	}

	// 4. Redis（仅在缓存或限流需要时连接）
	var (
		rdb *redis.Client
		err error
	)
	if (cfg.Cache.Enabled && cfg.Cache.Backend == "redis") || (cfg.RateLimit.RPS > 0 && cfg.RateLimit.Backend == "redis") {
		rdb, err = cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to redis %s: %w", cfg.Redis.Addr, err)
		}
		defer rdb.Close()
	}

	// 5. Remote client
	opts := client.Options{
		BaseURL:               cfg.OrderService.BaseURL,
		RetryAttempts:         cfg.OrderService.RetryAttempts,
		RetryDelay:            cfg.OrderService.RetryDelay,
		ConnectTimeout:        cfg.HTTPClient.ConnectTimeout,
		ResponseTimeout:       cfg.HTTPClient.ResponseTimeout,
		IdleTimeout:           cfg.HTTPClient.IdleTimeout,
		MaxConnections:        cfg.HTTPClient.MaxConnections,
		MaxConnectionsPerHost: cfg.HTTPClient.MaxConnectionsPerHost,
		Metrics:               m,
	}
	if cfg.RateLimit.RPS > 0 {
		var limiter ratelimit.RateLimiter = ratelimit.NewLocalRateLimiter()
		if cfg.RateLimit.Backend == "redis" {
			limiter = ratelimit.NewRedisRateLimiter(rdb)
		}
		opts.Limiter = ratelimit.NewWaiter(limiter, cfg.ServiceName+":order-service",
			ratelimit.PerSecond(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	if cfg.CircuitBreaker.Enabled {
		opts.Breaker = &client.BreakerOptions{
			MaxFailures:      cfg.CircuitBreaker.MaxFailures,
			OpenTimeout:      cfg.CircuitBreaker.OpenTimeout,
			HalfOpenRequests: cfg.CircuitBreaker.HalfOpenRequests,
		}
	}
	orderClient, err := client.NewOrderServiceClient(opts)
	if err != nil {
		return fmt.Errorf("create order service client: %w", err)
	}

	// 6. Repositories
	orderRepo := repository.NewHTTPOrderRepository(orderClient)
	httpRates := repository.NewHTTPRateRepository(orderClient)
	var rateRepo domain.RateRepository = httpRates
	if cfg.Cache.Enabled {
		var c cache.Cache
		if cfg.Cache.Backend == "redis" {
			c = cache.NewRedisCache(rdb, cfg.ServiceName, cfg.Cache.ExpireAfterWrite)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.MaxSize, cfg.Cache.ExpireAfterWrite)
		}
		defer c.Close()
		rateRepo = repository.NewCachedRateRepository(httpRates, c, cfg.Cache.ExpireAfterWrite, m)
	}

	// 7. Events
	var publisher domain.EventPublisher = messaging.NoopEventPublisher{}
	if cfg.Events.Enabled {
		producer, err := mq.NewProducer(mq.ProducerConfig{
			Brokers:      cfg.Events.Brokers,
			Topic:        cfg.Events.Topic,
			MaxAttempts:  3,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer)
	}

	// 8. Application
	clock := domain.SystemClock{}
	orderService := application.NewOrderService(orderRepo, publisher, clock, m)
	rateService := application.NewRateService(rateRepo)
	reportService := application.NewReportService(orderService, rateService, httpRates, clock)

	// 9. Interface
	repl := cli.New(orderService, reportService, os.Stdout, cli.Options{
		BaseURL: orderClient.BaseURL(),
		Clock:   clock,
		Metrics: m,
	})
	if err := repl.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("cli: %w", err)
	}
	logger.Info(ctx, "fx order book exiting")
	return nil
}
