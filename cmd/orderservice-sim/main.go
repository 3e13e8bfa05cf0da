package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/wyfcoding/fxorderbook/internal/simulator"
	"github.com/wyfcoding/fxorderbook/pkg/config"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/ratelimit"
)

func main() {
	fs := pflag.NewFlagSet("orderservice-sim", pflag.ExitOnError)
	configPath := fs.String("config", "configs/fxorderbook/config.toml", "path to config file")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "random walk seed")
	rps := fs.Float64("rps", 0, "per-client request limit, 0 disables")
	config.BindFlags(fs)
	_ = fs.Parse(os.Args[1:])

	// 1. Config
	cfg, err := config.LoadWithDefaults(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger，模拟器默认输出到 stdout
	logCfg := cfg.Logger
	if os.Getenv(config.EnvPrefix+"_LOGGER_OUTPUT") == "" {
		logCfg.Output = "stdout"
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// 3. Simulator
	opts := simulator.Options{
		Pairs:      cfg.Simulator.Pairs,
		Volatility: cfg.Simulator.Volatility,
		Seed:       *seed,
	}
	if *rps > 0 {
		opts.Limiter = ratelimit.NewLocalRateLimiter()
		opts.Limit = ratelimit.PerSecond(*rps, int(*rps)+1)
	}
	sim, err := simulator.New(opts)
	if err != nil {
		logger.Fatal(ctx, "Failed to create simulator", "error", err)
	}

	// 4. HTTP
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Simulator.Host, cfg.Simulator.Port),
		Handler:           sim.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting order service simulator", "addr", srv.Addr, "pairs", cfg.Simulator.Pairs)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "Simulator stopped", "error", err)
		}
	}()

	// 5. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down simulator...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Simulator forced to shutdown", "error", err)
	}
	logger.Info(ctx, "Simulator exiting", "orders", len(sim.Store().List()))
}
