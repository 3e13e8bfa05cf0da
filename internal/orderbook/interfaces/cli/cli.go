// Package cli 订单簿交互式命令行
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/application"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
	"github.com/wyfcoding/fxorderbook/pkg/logger"
	"github.com/wyfcoding/fxorderbook/pkg/metrics"
)

// Prompt 命令提示符
const Prompt = "fx-orderbook> "

// Options CLI 参数
type Options struct {
	// 仅用于启动探测失败时的提示
	BaseURL string
	Clock   domain.Clock
	Metrics *metrics.Metrics
}

// CLI 交互式命令行
type CLI struct {
	orders  *application.OrderService
	reports *application.ReportService
	clock   domain.Clock
	metrics *metrics.Metrics
	baseURL string
	out     io.Writer
}

// New 创建命令行
func New(orders *application.OrderService, reports *application.ReportService, out io.Writer, opts Options) *CLI {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &CLI{
		orders:  orders,
		reports: reports,
		clock:   clock,
		metrics: opts.Metrics,
		baseURL: opts.BaseURL,
		out:     out,
	}
}

// Run 读取输入直到 EOF、exit/quit 或 ctx 结束
func (c *CLI) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, "FX order book. Type 'help' for available commands.")
	c.probe(ctx)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(c.out, Prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if c.Execute(ctx, line) {
				return nil
			}
		}
	}
}

// probe 启动时检查远程服务，不可用时只提示
func (c *CLI) probe(ctx context.Context) {
	if h := c.reports.Health(ctx); !h.Healthy {
		logger.Warn(ctx, "Order service unreachable at startup", "base_url", c.baseURL)
		fmt.Fprintf(c.out, "Warning: order service at %s is not reachable. Commands will fail until it is available.\n", c.baseURL)
	}
}

// Execute 执行一行命令，返回 true 表示退出
func (c *CLI) Execute(ctx context.Context, line string) bool {
	cmd, ok := ParseCommand(line)
	if !ok {
		return false
	}

	ctx = logger.WithTraceID(ctx, uuid.NewString())
	start := time.Now()
	quit, err := c.dispatch(ctx, cmd)
	c.metrics.ObserveCommand(err != nil)

	if err != nil {
		logger.Warn(ctx, "Command failed", "command", cmd.Name, "error", err, "duration", time.Since(start))
		fmt.Fprintf(c.out, "Error in %s: %v\n", cmd.Name, err)
		return false
	}
	logger.Info(ctx, "Command executed", "command", cmd.Name, "duration", time.Since(start))
	return quit
}

func (c *CLI) dispatch(ctx context.Context, cmd Command) (bool, error) {
	switch cmd.Name {
	case "new":
		return false, c.newOrder(ctx, cmd.Args)
	case "cancel":
		return false, c.cancel(ctx, cmd.Args)
	case "orders":
		return false, c.listOrders(ctx, cmd.Args)
	case "rates":
		return false, c.rates(ctx, cmd.Args)
	case "summary":
		return false, c.summary(ctx, cmd.Args)
	case "analytics":
		return false, c.analytics(ctx, cmd.Args)
	case "health":
		if err := noArgs(cmd.Args, "health"); err != nil {
			return false, err
		}
		writeHealth(c.out, c.reports.Health(ctx))
		return false, nil
	case "help", "?":
		writeHelp(c.out)
		return false, nil
	case "exit", "quit":
		fmt.Fprintln(c.out, "Goodbye.")
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type 'help' for available commands", cmd.Name)
	}
}

func (c *CLI) newOrder(ctx context.Context, args []string) error {
	parsed, err := ParseNewOrderArgs(args, c.clock.Now())
	if err != nil {
		return err
	}
	created, err := c.orders.CreateOrder(ctx, parsed.Order())
	if err != nil {
		return err
	}
	writeCreated(c.out, created)
	return nil
}

func (c *CLI) cancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: cancel <id>", errUsage)
	}
	id, err := ValidateOrderID(args[0])
	if err != nil {
		return err
	}
	ok, err := c.orders.CancelOrder(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(c.out, "Order %s cancelled.\n", id)
	} else {
		fmt.Fprintf(c.out, "Order %s not found or already cancelled.\n", id)
	}
	return nil
}

func (c *CLI) listOrders(ctx context.Context, args []string) error {
	if err := noArgs(args, "orders"); err != nil {
		return err
	}
	report, err := c.reports.OrdersReport(ctx)
	if err != nil {
		return err
	}
	writeOrdersReport(c.out, report)
	return nil
}

func (c *CLI) rates(ctx context.Context, args []string) error {
	if err := noArgs(args, "rates"); err != nil {
		return err
	}
	rows, err := c.reports.RatesTable(ctx)
	if err != nil {
		return err
	}
	writeRates(c.out, rows)
	return nil
}

func (c *CLI) summary(ctx context.Context, args []string) error {
	if err := noArgs(args, "summary"); err != nil {
		return err
	}
	s, err := c.reports.Summary(ctx)
	if err != nil {
		return err
	}
	writeSummary(c.out, s)
	return nil
}

func (c *CLI) analytics(ctx context.Context, args []string) error {
	if err := noArgs(args, "analytics"); err != nil {
		return err
	}
	a, err := c.reports.Analytics(ctx)
	if err != nil {
		return err
	}
	writeAnalytics(c.out, a)
	return nil
}

func noArgs(args []string, name string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", errUsage, name)
	}
	return nil
}
