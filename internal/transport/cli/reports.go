package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
)

type monthCmd struct {
	srv   Service
	year  int
	month int
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "show one month's snapshot" }
func (*monthCmd) Usage() string {
	return `invest_dash month -year <year> -month <month>

  Prints the period's aggregated positions and net gain.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	now := time.Now()
	f.IntVar(&c.year, "year", now.Year(), "report year")
	f.IntVar(&c.month, "month", int(now.Month()), "report month (1-12)")
}

func (c *monthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := c.srv.MonthReport(ctx, c.year, c.month)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("%s %d: invested %s, cumulative profit %s, net gain %s\n",
		time.Month(report.Month), report.Year, money(report.TotalInvested), money(report.TotalProfit), money(report.MonthlyNetGain))

	for _, pos := range report.Positions {
		fmt.Printf("  %-10s volume %s  invested %s  value %s  P/L %s\n",
			pos.Symbol, pos.Volume.String(), money(pos.PurchaseValue), money(pos.CurrentValue), money(pos.Profit))
	}

	return subcommands.ExitSuccess
}

type yearlyCmd struct {
	srv  Service
	year int
}

func (*yearlyCmd) Name() string     { return "yearly" }
func (*yearlyCmd) Synopsis() string { return "show a year's month-by-month result" }
func (*yearlyCmd) Usage() string {
	return `invest_dash yearly -year <year>

  Prints each month's net gain, the yearly total and ROI, and the best month.
`
}

func (c *yearlyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year(), "year to summarize")
}

func (c *yearlyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stats, err := c.srv.YearlySummary(ctx, c.year)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Year %d: invested %s, result %s (%s)\n",
		stats.Year, money(stats.TotalInvested), money(stats.DeltaProfit), percent(stats.ROI))

	for _, m := range stats.Months {
		fmt.Printf("  %-10s %s\n", time.Month(m.Month), money(m.Delta))
	}

	if stats.BestMonth != nil {
		fmt.Printf("Best month: %s (%s)\n", time.Month(stats.BestMonth.Month), money(stats.BestMonth.Delta))
	}

	return subcommands.ExitSuccess
}

type summaryCmd struct {
	srv Service
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the portfolio-wide summary" }
func (*summaryCmd) Usage() string {
	return `invest_dash summary

  Prints overall invested capital, stock and dividend profit, ROI and the
  current portfolio from the latest snapshot.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	firstVisitHint(ctx, c.srv)

	stats, err := c.srv.GlobalSummary(ctx)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Invested: %s\n", money(stats.TotalInvested))
	fmt.Printf("Stock profit: %s, dividend profit: %s, total: %s (%s)\n",
		money(stats.StockProfit), money(stats.DividendProfit), money(stats.TotalAbsoluteProfit), percent(stats.ROI))

	fmt.Println("Current portfolio:")
	for _, pos := range stats.LatestPositions {
		fmt.Printf("  %-10s volume %s  invested %s  value %s  P/L %s\n",
			pos.Symbol, pos.Volume.String(), money(pos.PurchaseValue), money(pos.CurrentValue), money(pos.Profit))
	}

	return subcommands.ExitSuccess
}
