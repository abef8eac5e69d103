package portfolioService

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xtbdash/invest_dash/config"
	"github.com/xtbdash/invest_dash/data/storage"
	"github.com/xtbdash/invest_dash/internal/model"
	"github.com/xtbdash/invest_dash/internal/service"
	"github.com/xtbdash/invest_dash/internal/store"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type stubParser struct {
	positions []model.OpenPosition
	warnings  []string
	dividends []model.Dividend
	err       error
}

func (p *stubParser) ParseOpenPositions(context.Context, []byte) ([]model.OpenPosition, []string, error) {
	return p.positions, p.warnings, p.err
}

func (p *stubParser) ParseDividends(context.Context, []byte) ([]model.Dividend, error) {
	return p.dividends, p.err
}

func newTestService(t *testing.T, cfg *config.Config, parser Parser) *PortfolioService {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	portfolioStore, err := store.New(context.Background(), storage.NewMemoryStorage())
	require.NoError(t, err)
	return New(cfg, portfolioStore, parser)
}

func TestUploadReport(t *testing.T) {
	ctx := context.Background()
	parser := &stubParser{
		positions: []model.OpenPosition{
			{Symbol: "ABC", Volume: dec(10), PurchaseValue: dec(1000), Profit: dec(100)},
		},
		warnings: []string{"XYZ: unreadable Volume cell \"oops\", counted as 0"},
	}
	srv := newTestService(t, nil, parser)

	report, warnings, err := srv.UploadReport(ctx, []byte("xlsx"), 2024, 1)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Equal(t, "2024-01", report.ID)
	require.Equal(t, "1000", report.TotalInvested.String())
	require.Equal(t, "100", report.TotalProfit.String())
}

func TestUploadReport_Validation(t *testing.T) {
	ctx := context.Background()
	srv := newTestService(t, nil, &stubParser{})

	for _, tc := range []struct {
		name        string
		year, month int
	}{
		{"month zero", 2024, 0},
		{"month thirteen", 2024, 13},
		{"year too small", 1800, 5},
		{"year too large", 2500, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := srv.UploadReport(ctx, []byte("xlsx"), tc.year, tc.month)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestImportDividendHistory_NoDedupByDefault(t *testing.T) {
	ctx := context.Background()
	div := model.Dividend{ID: "1", Symbol: "ABC", PayDate: "2024-03-15", Status: model.DividendReceived, TotalAmount: dec(10)}
	srv := newTestService(t, nil, &stubParser{dividends: []model.Dividend{div}})

	added, skipped, err := srv.ImportDividendHistory(ctx, []byte("xlsx"))
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Zero(t, skipped)

	// importing the same statement again duplicates without the dedup flag
	added, skipped, err = srv.ImportDividendHistory(ctx, []byte("xlsx"))
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Zero(t, skipped)
}

func TestImportDividendHistory_Dedup(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Dividends: config.Dividends{DedupOnImport: true}}
	dividends := []model.Dividend{
		{ID: "1", Symbol: "ABC", PayDate: "2024-03-15", Status: model.DividendReceived, TotalAmount: dec(10)},
		{ID: "2", Symbol: "ABC", PayDate: "2024-03-15", Status: model.DividendReceived, TotalAmount: dec(10)},
		{ID: "3", Symbol: "XYZ", PayDate: "2024-03-15", Status: model.DividendReceived, TotalAmount: dec(10)},
	}
	srv := newTestService(t, cfg, &stubParser{dividends: dividends})

	added, skipped, err := srv.ImportDividendHistory(ctx, []byte("xlsx"))
	require.NoError(t, err)
	require.Equal(t, 2, added)
	require.Equal(t, 1, skipped)

	added, skipped, err = srv.ImportDividendHistory(ctx, []byte("xlsx"))
	require.NoError(t, err)
	require.Zero(t, added)
	require.Equal(t, 3, skipped)
}

func TestAddPlannedDividend(t *testing.T) {
	ctx := context.Background()
	srv := newTestService(t, nil, &stubParser{})

	div, err := srv.AddPlannedDividend(ctx, "ABC", dec(4), "2024-06-01")
	require.NoError(t, err)
	require.NotEmpty(t, div.ID)
	require.Equal(t, model.DividendPlanned, div.Status)
	require.Equal(t, "4", div.YieldPercentage.String())
}

func TestAddPlannedDividend_Validation(t *testing.T) {
	ctx := context.Background()
	srv := newTestService(t, nil, &stubParser{})

	for _, tc := range []struct {
		name    string
		symbol  string
		yield   decimal.Decimal
		payDate string
	}{
		{"empty symbol", "", dec(4), "2024-06-01"},
		{"zero yield", "ABC", dec(0), "2024-06-01"},
		{"negative yield", "ABC", dec(-1), "2024-06-01"},
		{"bad date", "ABC", dec(4), "06/01/2024"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.AddPlannedDividend(ctx, tc.symbol, tc.yield, tc.payDate)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestMonthReport_RecomputesNetGain(t *testing.T) {
	ctx := context.Background()
	parser := &stubParser{}
	srv := newTestService(t, nil, parser)

	// later month uploaded first, its delta settles once January arrives
	parser.positions = []model.OpenPosition{{Symbol: "ABC", PurchaseValue: dec(1200), Profit: dec(150)}}
	_, _, err := srv.UploadReport(ctx, []byte("xlsx"), 2024, 2)
	require.NoError(t, err)

	parser.positions = []model.OpenPosition{{Symbol: "ABC", PurchaseValue: dec(1000), Profit: dec(100)}}
	_, _, err = srv.UploadReport(ctx, []byte("xlsx"), 2024, 1)
	require.NoError(t, err)

	report, err := srv.MonthReport(ctx, 2024, 2)
	require.NoError(t, err)
	require.Equal(t, "50", report.MonthlyNetGain.String())
}

func TestMonthReport_NotFound(t *testing.T) {
	srv := newTestService(t, nil, &stubParser{})
	_, err := srv.MonthReport(context.Background(), 2024, 1)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestYearlySummary_NotFound(t *testing.T) {
	srv := newTestService(t, nil, &stubParser{})
	_, err := srv.YearlySummary(context.Background(), 2024)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGlobalSummary_NotFound(t *testing.T) {
	srv := newTestService(t, nil, &stubParser{})
	_, err := srv.GlobalSummary(context.Background())
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestImportBackup_InvalidIsValidationError(t *testing.T) {
	srv := newTestService(t, nil, &stubParser{})
	err := srv.ImportBackup(context.Background(), []byte(`{"reports":{}}`))
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestBackupToDir(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Backup: config.Backup{Dir: t.TempDir()}}
	srv := newTestService(t, cfg, &stubParser{})

	path, err := srv.BackupToDir(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"reports"`)
	require.Contains(t, string(data), `"plannedDividends"`)
}

func TestFirstVisitLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := newTestService(t, nil, &stubParser{})

	require.True(t, srv.FirstVisit(ctx))
	require.NoError(t, srv.MarkVisited(ctx))
	require.False(t, srv.FirstVisit(ctx))
}
