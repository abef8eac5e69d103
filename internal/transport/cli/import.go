package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
)

type importCmd struct {
	srv       Service
	year      int
	month     int
	dividends bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import an XTB statement as a monthly report" }
func (*importCmd) Usage() string {
	return `invest_dash import [-year <year>] [-month <month>] [-dividends] <file.xlsx>

  Parses the statement's open positions into the snapshot for the given
  period (defaults to the current month), replacing any previous upload for
  it. With -dividends the cash-operations sheet is imported as well.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	now := time.Now()
	f.IntVar(&c.year, "year", now.Year(), "report year")
	f.IntVar(&c.month, "month", int(now.Month()), "report month (1-12)")
	f.BoolVar(&c.dividends, "dividends", false, "also import received dividends from the statement")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageErr("exactly one statement file expected")
	}

	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail(err)
	}

	report, warnings, err := c.srv.UploadReport(ctx, data, c.year, c.month)
	if err != nil {
		return fail(err)
	}

	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	fmt.Printf("Stored report %s: %d positions, invested %s, profit %s, net gain %s\n",
		report.ID, len(report.Positions), money(report.TotalInvested), money(report.TotalProfit), money(report.MonthlyNetGain))

	if c.dividends {
		added, skipped, err := c.srv.ImportDividendHistory(ctx, data)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("Imported %d received dividends (%d skipped)\n", added, skipped)
	}

	return subcommands.ExitSuccess
}
