// Package cli is the thin presentation surface: flag parsing and printing
// around the service, nothing more.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/xtbdash/invest_dash/internal/model"
)

type Service interface {
	UploadReport(ctx context.Context, fileData []byte, year, month int) (model.MonthData, []string, error)
	ImportDividendHistory(ctx context.Context, fileData []byte) (added, skipped int, err error)
	AddPlannedDividend(ctx context.Context, symbol string, yieldPercentage decimal.Decimal, payDate string) (model.Dividend, error)
	RemoveDividend(ctx context.Context, id string) error
	MonthReport(ctx context.Context, year, month int) (model.MonthData, error)
	YearlySummary(ctx context.Context, year int) (model.YearlyStats, error)
	GlobalSummary(ctx context.Context) (model.GlobalStats, error)
	DividendCalendar(ctx context.Context, year int) ([]model.Dividend, model.DividendOverview)
	Years(ctx context.Context) []int
	ExportBackup(ctx context.Context) ([]byte, error)
	ImportBackup(ctx context.Context, data []byte) error
	BackupToDir(ctx context.Context) (string, error)
	FirstVisit(ctx context.Context) bool
	MarkVisited(ctx context.Context) error
}

// Register mounts every command on the commander. backupInterval is the
// configured default for the watch command.
func Register(c *subcommands.Commander, srv Service, backupInterval time.Duration) {
	c.Register(&importCmd{srv: srv}, "reports")
	c.Register(&monthCmd{srv: srv}, "reports")
	c.Register(&yearlyCmd{srv: srv}, "reports")
	c.Register(&summaryCmd{srv: srv}, "reports")

	c.Register(&dividendsCmd{srv: srv}, "dividends")
	c.Register(&dividendAddCmd{srv: srv}, "dividends")
	c.Register(&dividendRemoveCmd{srv: srv}, "dividends")

	c.Register(&exportCmd{srv: srv}, "backup")
	c.Register(&restoreCmd{srv: srv}, "backup")
	c.Register(&backupCmd{srv: srv}, "backup")
	c.Register(&watchCmd{srv: srv, interval: backupInterval}, "backup")
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usageErr(msg string) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	return subcommands.ExitUsageError
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	sign := ""
	if d.Sign() >= 0 {
		sign = "+"
	}
	return sign + d.StringFixed(2) + "%"
}

// firstVisitHint prints the onboarding note once.
func firstVisitHint(ctx context.Context, srv Service) {
	if !srv.FirstVisit(ctx) {
		return
	}
	fmt.Println("Welcome! Upload your first XTB statement with: invest_dash import -year <year> -month <month> <file.xlsx>")
	_ = srv.MarkVisited(ctx)
}
