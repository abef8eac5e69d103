package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xtbdash/invest_dash/data/storage"
	"github.com/xtbdash/invest_dash/internal/model"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTestStore(t *testing.T) *PortfolioStore {
	t.Helper()
	s, err := New(context.Background(), storage.NewMemoryStorage())
	require.NoError(t, err)
	return s
}

func position(symbol string, purchaseValue, profit int64) model.OpenPosition {
	return model.OpenPosition{
		Symbol:        symbol,
		Volume:        dec(1),
		PurchaseValue: dec(purchaseValue),
		Profit:        dec(profit),
	}
}

func TestNew_FreshDocument(t *testing.T) {
	s := newTestStore(t)
	doc := s.Document()
	require.True(t, doc.IsFirstVisit)
	require.NotNil(t, doc.Reports)
	require.Empty(t, doc.Reports)
}

func TestNew_ReloadsPersistedDocument(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()

	s, err := New(ctx, backend)
	require.NoError(t, err)
	_, err = s.AddReport(ctx, 2024, 1, []model.OpenPosition{position("ABC", 1000, 100)})
	require.NoError(t, err)
	require.NoError(t, s.MarkVisited(ctx))

	reloaded, err := New(ctx, backend)
	require.NoError(t, err)
	require.False(t, reloaded.Document().IsFirstVisit)

	report, err := reloaded.Report(2024, 1)
	require.NoError(t, err)
	require.Equal(t, "1000", report.TotalInvested.String())
}

func TestAddReport_TotalsAndNetGain(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.AddReport(ctx, 2024, 1, []model.OpenPosition{
		position("ABC", 1000, 100),
		position("XYZ", 500, -20),
	})
	require.NoError(t, err)
	require.Equal(t, "2024-01", first.ID)
	require.Equal(t, "1500", first.TotalInvested.String())
	require.Equal(t, "80", first.TotalProfit.String())
	// no previous month on record, cumulative profit stands in
	require.Equal(t, "80", first.MonthlyNetGain.String())

	second, err := s.AddReport(ctx, 2024, 2, []model.OpenPosition{position("ABC", 1600, 130)})
	require.NoError(t, err)
	require.Equal(t, "50", second.MonthlyNetGain.String())
}

func TestAddReport_ReplacesExistingPeriod(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AddReport(ctx, 2024, 3, []model.OpenPosition{position("ABC", 1000, 100)})
	require.NoError(t, err)
	_, err = s.AddReport(ctx, 2024, 3, []model.OpenPosition{position("XYZ", 700, 30)})
	require.NoError(t, err)

	require.Len(t, s.Document().Reports, 1)
	report, err := s.Report(2024, 3)
	require.NoError(t, err)
	require.Equal(t, "700", report.TotalInvested.String())
	require.Equal(t, "XYZ", report.Positions[0].Symbol)
}

func TestReport_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Report(2024, 1)
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestRemoveDividend(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AddDividend(ctx, model.Dividend{ID: "keep"}))
	require.NoError(t, s.AddDividend(ctx, model.Dividend{ID: "drop"}))

	require.NoError(t, s.RemoveDividend(ctx, "drop"))
	require.Len(t, s.Document().PlannedDividends, 1)
	require.Equal(t, "keep", s.Document().PlannedDividends[0].ID)

	// unknown id is a no-op
	require.NoError(t, s.RemoveDividend(ctx, "missing"))
	require.Len(t, s.Document().PlannedDividends, 1)
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AddReport(ctx, 2024, 1, []model.OpenPosition{position("ABC", 1000, 100)})
	require.NoError(t, err)
	require.NoError(t, s.AddDividend(ctx, model.Dividend{ID: "d1", Symbol: "ABC", PayDate: "2024-03-15", Status: model.DividendPlanned}))

	exported, err := s.Export(ctx)
	require.NoError(t, err)

	restored := newTestStore(t)
	require.NoError(t, restored.Import(ctx, exported))

	reExported, err := restored.Export(ctx)
	require.NoError(t, err)
	require.JSONEq(t, string(exported), string(reExported))
}

func TestImport_RejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddReport(ctx, 2024, 1, []model.OpenPosition{position("ABC", 1000, 100)})
	require.NoError(t, err)

	cases := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"missing plannedDividends", `{"reports":{}}`},
		{"missing reports", `{"plannedDividends":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Import(ctx, []byte(tc.data))
			require.ErrorIs(t, err, ErrInvalidDocument)

			// rejected import leaves the current state untouched
			require.Len(t, s.Document().Reports, 1)
		})
	}
}

func TestImport_RestoresStateOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddReport(ctx, 2024, 1, []model.OpenPosition{position("ABC", 1000, 100)})
	require.NoError(t, err)

	s.persister = failingPersister{}
	err = s.Import(ctx, []byte(`{"reports":{},"plannedDividends":[]}`))
	require.Error(t, err)
	require.Len(t, s.Document().Reports, 1)
}

func TestMarkVisited(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.MarkVisited(ctx))
	require.False(t, s.Document().IsFirstVisit)

	// already cleared, stays cleared
	require.NoError(t, s.MarkVisited(ctx))
	require.False(t, s.Document().IsFirstVisit)
}

type failingPersister struct{}

func (failingPersister) Save(context.Context, model.PortfolioDocument) error {
	return errors.New("backend down")
}

func (failingPersister) Load(context.Context) (model.PortfolioDocument, error) {
	return model.PortfolioDocument{}, storage.ErrNotFound
}
