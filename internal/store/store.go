// Package store owns the in-memory portfolio document and writes it through
// to a Persister after every successful mutation. All reads elsewhere go
// through stateless metrics functions, so the store is the only mutator.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/xtbdash/invest_dash/data/storage"
	"github.com/xtbdash/invest_dash/internal/metrics"
	"github.com/xtbdash/invest_dash/internal/model"
	"github.com/xtbdash/invest_dash/utils"
)

// Persister saves and restores the whole document. Implementations live in
// data/storage.
type Persister interface {
	Save(ctx context.Context, doc model.PortfolioDocument) error
	Load(ctx context.Context) (model.PortfolioDocument, error)
}

type PortfolioStore struct {
	doc       model.PortfolioDocument
	persister Persister
}

// New loads the previously persisted document, or starts a fresh one when
// the backend holds nothing yet.
func New(ctx context.Context, persister Persister) (*PortfolioStore, error) {
	doc, err := persister.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load portfolio document: %w", err)
		}
		doc = model.NewPortfolioDocument()
	}
	if doc.Reports == nil {
		doc.Reports = make(map[string]model.MonthData)
	}

	return &PortfolioStore{doc: doc, persister: persister}, nil
}

// Document returns the current in-memory state for read-only use.
func (s *PortfolioStore) Document() model.PortfolioDocument {
	return s.doc
}

// AddReport builds the month's snapshot from aggregated positions and
// replaces any existing report for that period. The net gain is computed
// against the store's previous-month snapshot as of this call.
func (s *PortfolioStore) AddReport(ctx context.Context, year, month int, positions []model.OpenPosition) (model.MonthData, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioStore.AddReport"

	var totalInvested, totalProfit decimal.Decimal
	for _, pos := range positions {
		totalInvested = totalInvested.Add(pos.PurchaseValue)
		totalProfit = totalProfit.Add(pos.Profit)
	}

	monthlyNetGain := totalProfit
	if prev, ok := metrics.PreviousSnapshot(s.doc, year, month); ok {
		monthlyNetGain = totalProfit.Sub(prev.TotalProfit)
	}

	key := model.PeriodKey(year, month)
	report := model.MonthData{
		ID:             key,
		Year:           year,
		Month:          month,
		Positions:      positions,
		TotalInvested:  totalInvested,
		TotalProfit:    totalProfit,
		MonthlyNetGain: monthlyNetGain,
	}

	s.doc.Reports[key] = report

	if err := s.persist(ctx); err != nil {
		return model.MonthData{}, err
	}

	slog.Info("report stored",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("period", key),
		slog.Int("positions", len(positions)),
	)

	return report, nil
}

// Report returns the snapshot for one period.
func (s *PortfolioStore) Report(year, month int) (model.MonthData, error) {
	report, ok := s.doc.Reports[model.PeriodKey(year, month)]
	if !ok {
		return model.MonthData{}, ErrReportNotFound
	}
	return report, nil
}

func (s *PortfolioStore) AddDividend(ctx context.Context, div model.Dividend) error {
	s.doc.PlannedDividends = append(s.doc.PlannedDividends, div)
	return s.persist(ctx)
}

// RemoveDividend drops the dividend with the given id. Removing an unknown
// id is a no-op and does not touch the backend.
func (s *PortfolioStore) RemoveDividend(ctx context.Context, id string) error {
	for i, div := range s.doc.PlannedDividends {
		if div.ID == id {
			s.doc.PlannedDividends = append(s.doc.PlannedDividends[:i], s.doc.PlannedDividends[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// MarkVisited clears the first-visit onboarding flag.
func (s *PortfolioStore) MarkVisited(ctx context.Context) error {
	if !s.doc.IsFirstVisit {
		return nil
	}
	s.doc.IsFirstVisit = false
	return s.persist(ctx)
}

// Export serializes the document for a backup download.
func (s *PortfolioStore) Export(ctx context.Context) ([]byte, error) {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal portfolio document: %w", err)
	}
	return data, nil
}

// Import wholesale-replaces the document from a backup. The backup must
// carry the reports and plannedDividends top-level fields; anything else is
// rejected and the current state stays untouched.
func (s *PortfolioStore) Import(ctx context.Context, data []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioStore.Import"

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		slog.Error("backup is not a JSON object", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%w: %s", ErrInvalidDocument, err)
	}
	for _, field := range []string{"reports", "plannedDividends"} {
		if _, ok := probe[field]; !ok {
			return fmt.Errorf("%w: missing field %q", ErrInvalidDocument, field)
		}
	}

	var doc model.PortfolioDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, err)
	}
	if doc.Reports == nil {
		doc.Reports = make(map[string]model.MonthData)
	}

	previous := s.doc
	s.doc = doc
	if err := s.persist(ctx); err != nil {
		s.doc = previous
		return err
	}

	slog.Info("backup imported",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("reports", len(doc.Reports)),
		slog.Int("dividends", len(doc.PlannedDividends)),
	)

	return nil
}

func (s *PortfolioStore) persist(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.doc); err != nil {
		slog.Error("can't persist portfolio document",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("persist portfolio document: %w", err)
	}
	return nil
}
