package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/application"
	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

const notAvailable = "n/a"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(domain.PriceScale)
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.String()
}

// writeRates 报价表
func writeRates(w io.Writer, rows []application.RateRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rates available.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "PAIR\tBID\tASK\tMID\tSPREAD %")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Pair, formatPrice(r.Bid), formatPrice(r.Ask), formatPrice(r.Mid),
			r.SpreadPercentage.StringFixed(domain.PercentScale))
	}
	_ = tw.Flush()
}

// writeOrdersReport 订单对账表
func writeOrdersReport(w io.Writer, report application.OrdersReport) {
	if len(report.Lines) == 0 {
		fmt.Fprintln(w, "No orders.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPAIR\tSIDE\tLIMIT\tMARKET\tDISTANCE\tVALID UNTIL")
	for _, l := range report.Lines {
		market := notAvailable
		if l.MarketRate.Valid {
			market = formatPrice(l.MarketRate.Decimal)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Order.ID, l.Pair, l.Order.Side(), formatNull(l.Order.Limit), market,
			formatNull(l.Distance), l.Order.ValidUntil)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d order(s)\n", len(report.Lines))
}

// writeSummary 订单汇总表
func writeSummary(w io.Writer, s application.SummaryReport) {
	if s.TotalOrders == 0 {
		fmt.Fprintln(w, "No orders.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "INVESTMENT\tCOUNTER\tSIDE\tCOUNT\tAVG LIMIT")
	for _, g := range s.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", g.InvestmentCcy, g.CounterCcy, g.Side, g.Count, formatNull(g.AverageLimit))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Total orders: %d, unique pairs: %d\n", s.TotalOrders, s.UniquePairs)
}

func writeAnalytics(w io.Writer, a application.Analytics) {
	fmt.Fprintf(w, "Orders: %d (buy %d, sell %d)\n", a.TotalOrders, a.BuyOrders, a.SellOrders)
	fmt.Fprintf(w, "Rates:  %d\n", a.TotalRates)
	fmt.Fprintf(w, "As of:  %s\n", a.Timestamp.Format(time.DateTime))
}

func writeHealth(w io.Writer, h application.HealthStatus) {
	fmt.Fprintf(w, "Order service: %s (checked %s)\n", h.Status, h.CheckedAt.Format(time.DateTime))
}

func writeCreated(w io.Writer, o *domain.Order) {
	fmt.Fprintf(w, "Order created: %s (%s %s, limit %s, valid until %s)\n",
		o.ID, o.Side(), o.PairLabel(), formatNull(o.Limit), o.ValidUntil)
}

const helpText = `Available commands:
  new buy|sell <inv> <ctr> <limit> <dd.MM.yyyy>  place a limit order, e.g. new buy EUR USD 1.2050 31.12.2025
  cancel <id>                                    cancel an order
  orders                                         list orders against current market rates
  rates                                          show the current rate snapshot
  summary                                        group orders by currency pair and side
  analytics                                      order and rate totals
  health                                         check the order service
  help, ?                                        show this help
  exit, quit                                     leave`

func writeHelp(w io.Writer) {
	fmt.Fprintln(w, helpText)
}
