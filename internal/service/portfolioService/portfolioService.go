package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xtbdash/invest_dash/config"
	"github.com/xtbdash/invest_dash/internal/metrics"
	"github.com/xtbdash/invest_dash/internal/model"
	"github.com/xtbdash/invest_dash/internal/service"
	"github.com/xtbdash/invest_dash/internal/store"
	"github.com/xtbdash/invest_dash/utils"
)

type Parser interface {
	ParseOpenPositions(ctx context.Context, data []byte) ([]model.OpenPosition, []string, error)
	ParseDividends(ctx context.Context, data []byte) ([]model.Dividend, error)
}

type Store interface {
	Document() model.PortfolioDocument
	AddReport(ctx context.Context, year, month int, positions []model.OpenPosition) (model.MonthData, error)
	Report(year, month int) (model.MonthData, error)
	AddDividend(ctx context.Context, div model.Dividend) error
	RemoveDividend(ctx context.Context, id string) error
	MarkVisited(ctx context.Context) error
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
}

type PortfolioService struct {
	cfg    *config.Config
	store  Store
	parser Parser
}

func New(cfg *config.Config, store Store, parser Parser) *PortfolioService {
	return &PortfolioService{
		cfg:    cfg,
		store:  store,
		parser: parser,
	}
}

// UploadReport parses a statement file and stores its aggregated positions
// as the snapshot for the given period, replacing any previous upload for
// that period. The store is only touched after a successful parse. Returned
// warnings list cells that were counted as zero.
func (s *PortfolioService) UploadReport(ctx context.Context, fileData []byte, year, month int) (model.MonthData, []string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UploadReport"

	slog.Debug("UploadReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("year", year), slog.Int("month", month))
	defer func() {
		slog.Debug("UploadReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("year", year), slog.Int("month", month))
	}()

	if month < 1 || month > 12 {
		return model.MonthData{}, nil, fmt.Errorf("%w: month %d out of range", service.ErrValidation, month)
	}
	if year < 1900 || year > 2200 {
		return model.MonthData{}, nil, fmt.Errorf("%w: year %d out of range", service.ErrValidation, year)
	}

	positions, warnings, err := s.parser.ParseOpenPositions(ctx, fileData)
	if err != nil {
		slog.Error("got error from parser.ParseOpenPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthData{}, nil, err
	}

	report, err := s.store.AddReport(ctx, year, month, positions)
	if err != nil {
		slog.Error("got error from store.AddReport", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthData{}, nil, err
	}

	return report, warnings, nil
}

// ImportDividendHistory extracts realized dividends from a statement file
// and appends them. With dedup enabled, rows matching an existing received
// dividend on symbol, pay date and amount are skipped.
func (s *PortfolioService) ImportDividendHistory(ctx context.Context, fileData []byte) (added, skipped int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ImportDividendHistory"

	slog.Debug("ImportDividendHistory start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ImportDividendHistory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("added", added), slog.Int("skipped", skipped))
	}()

	dividends, err := s.parser.ParseDividends(ctx, fileData)
	if err != nil {
		slog.Error("got error from parser.ParseDividends", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, 0, err
	}

	existing := make(map[string]struct{})
	if s.cfg.Dividends.DedupOnImport {
		for _, div := range s.store.Document().PlannedDividends {
			if div.Status == model.DividendReceived {
				existing[dedupKey(div)] = struct{}{}
			}
		}
	}

	for _, div := range dividends {
		if s.cfg.Dividends.DedupOnImport {
			key := dedupKey(div)
			if _, ok := existing[key]; ok {
				skipped++
				continue
			}
			existing[key] = struct{}{}
		}
		if err := s.store.AddDividend(ctx, div); err != nil {
			return added, skipped, err
		}
		added++
	}

	return added, skipped, nil
}

func dedupKey(div model.Dividend) string {
	return div.Symbol + "|" + div.PayDate + "|" + div.TotalAmount.String()
}

// AddPlannedDividend records a user-entered dividend forecast.
func (s *PortfolioService) AddPlannedDividend(ctx context.Context, symbol string, yieldPercentage decimal.Decimal, payDate string) (model.Dividend, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddPlannedDividend"

	slog.Debug("AddPlannedDividend start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	if symbol == "" {
		return model.Dividend{}, fmt.Errorf("%w: empty symbol", service.ErrValidation)
	}
	if !yieldPercentage.IsPositive() {
		return model.Dividend{}, fmt.Errorf("%w: yield must be positive", service.ErrValidation)
	}
	if _, err := time.Parse(time.DateOnly, payDate); err != nil {
		return model.Dividend{}, fmt.Errorf("%w: pay date must be YYYY-MM-DD", service.ErrValidation)
	}

	div := model.Dividend{
		ID:              uuid.NewString(),
		Symbol:          symbol,
		YieldPercentage: yieldPercentage,
		PayDate:         payDate,
		Status:          model.DividendPlanned,
	}

	if err := s.store.AddDividend(ctx, div); err != nil {
		slog.Error("got error from store.AddDividend", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Dividend{}, err
	}

	return div, nil
}

func (s *PortfolioService) RemoveDividend(ctx context.Context, id string) error {
	return s.store.RemoveDividend(ctx, id)
}

// MonthReport returns one period's snapshot with its net gain recomputed
// against the current store, so uploading months out of order never leaves
// a stale delta on display.
func (s *PortfolioService) MonthReport(ctx context.Context, year, month int) (model.MonthData, error) {
	report, err := s.store.Report(year, month)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			return model.MonthData{}, service.ErrNotFound
		}
		return model.MonthData{}, err
	}

	report.MonthlyNetGain = metrics.MonthlyDelta(s.store.Document(), report)
	return report, nil
}

func (s *PortfolioService) YearlySummary(ctx context.Context, year int) (model.YearlyStats, error) {
	stats := metrics.YearlyStats(s.store.Document(), year)
	if len(stats.Months) == 0 {
		return model.YearlyStats{}, service.ErrNotFound
	}
	return stats, nil
}

func (s *PortfolioService) GlobalSummary(ctx context.Context) (model.GlobalStats, error) {
	stats, ok := metrics.GlobalStats(s.store.Document())
	if !ok {
		return model.GlobalStats{}, service.ErrNotFound
	}
	return stats, nil
}

// DividendCalendar returns the forecasted dividend list ordered by pay date
// plus the overview sums for the given year.
func (s *PortfolioService) DividendCalendar(ctx context.Context, year int) ([]model.Dividend, model.DividendOverview) {
	doc := s.store.Document()
	return metrics.ForecastDividends(doc), metrics.DividendOverview(doc, year)
}

func (s *PortfolioService) Years(ctx context.Context) []int {
	return metrics.Years(s.store.Document())
}

func (s *PortfolioService) ExportBackup(ctx context.Context) ([]byte, error) {
	return s.store.Export(ctx)
}

func (s *PortfolioService) ImportBackup(ctx context.Context, data []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ImportBackup"

	if err := s.store.Import(ctx, data); err != nil {
		slog.Error("got error from store.Import", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if errors.Is(err, store.ErrInvalidDocument) {
			return fmt.Errorf("%w: %s", service.ErrValidation, err)
		}
		return err
	}
	return nil
}

// BackupToDir writes a timestamped backup file into the configured backup
// directory and returns its path. Used by the watch job and the backup
// command.
func (s *PortfolioService) BackupToDir(ctx context.Context) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.BackupToDir"

	data, err := s.store.Export(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.Backup.Dir, 0o755); err != nil {
		slog.Error("can't create backup dir", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	path := filepath.Join(s.cfg.Backup.Dir, fmt.Sprintf("invest_dash_backup_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("can't write backup file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("write backup file: %w", err)
	}

	slog.Info("backup written", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

	return path, nil
}

func (s *PortfolioService) FirstVisit(ctx context.Context) bool {
	return s.store.Document().IsFirstVisit
}

func (s *PortfolioService) MarkVisited(ctx context.Context) error {
	return s.store.MarkVisited(ctx)
}
