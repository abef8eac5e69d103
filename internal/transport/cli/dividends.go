package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type dividendsCmd struct {
	srv  Service
	year int
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "show the dividend calendar" }
func (*dividendsCmd) Usage() string {
	return `invest_dash dividends [-year <year>]

  Prints every dividend with forecast amounts filled in from the latest
  snapshot, plus the received/planned totals for the year.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year(), "year for the overview totals")
}

func (c *dividendsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dividends, overview := c.srv.DividendCalendar(ctx, c.year)

	for _, div := range dividends {
		fmt.Printf("  %s  %-10s %-8s per share %s  total %s  (id %s)\n",
			div.PayDate, div.Symbol, div.Status, money(div.AmountPerShare), money(div.TotalAmount), div.ID)
	}

	fmt.Printf("%d: received %s, planned %s, total %s\n",
		overview.Year, money(overview.Received), money(overview.Planned), money(overview.Total))

	return subcommands.ExitSuccess
}

type dividendAddCmd struct {
	srv     Service
	symbol  string
	yield   string
	payDate string
}

func (*dividendAddCmd) Name() string     { return "dividend-add" }
func (*dividendAddCmd) Synopsis() string { return "add a planned dividend" }
func (*dividendAddCmd) Usage() string {
	return `invest_dash dividend-add -symbol <symbol> -yield <percent> -date <YYYY-MM-DD>

  Adds a forecast dividend; its amount is recomputed from the latest
  snapshot's price and volume whenever the calendar is shown.
`
}

func (c *dividendAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "instrument symbol")
	f.StringVar(&c.yield, "yield", "", "assumed dividend yield in percent")
	f.StringVar(&c.payDate, "date", "", "expected pay date (YYYY-MM-DD)")
}

func (c *dividendAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	yield, err := decimal.NewFromString(c.yield)
	if err != nil {
		return usageErr("yield must be a number")
	}

	div, err := c.srv.AddPlannedDividend(ctx, c.symbol, yield, c.payDate)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Added planned dividend %s for %s on %s\n", div.ID, div.Symbol, div.PayDate)
	return subcommands.ExitSuccess
}

type dividendRemoveCmd struct {
	srv Service
}

func (*dividendRemoveCmd) Name() string     { return "dividend-remove" }
func (*dividendRemoveCmd) Synopsis() string { return "remove a dividend by id" }
func (*dividendRemoveCmd) Usage() string {
	return `invest_dash dividend-remove <id>
`
}

func (*dividendRemoveCmd) SetFlags(*flag.FlagSet) {}

func (c *dividendRemoveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageErr("exactly one dividend id expected")
	}
	if err := c.srv.RemoveDividend(ctx, f.Arg(0)); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
