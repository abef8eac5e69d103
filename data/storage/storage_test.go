package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xtbdash/invest_dash/internal/model"

	_ "modernc.org/sqlite"
)

func sampleDocument() model.PortfolioDocument {
	doc := model.NewPortfolioDocument()
	doc.Reports["2024-01"] = model.MonthData{
		ID:            "2024-01",
		Year:          2024,
		Month:         1,
		TotalInvested: decimal.NewFromInt(1500),
		TotalProfit:   decimal.NewFromInt(80),
	}
	doc.PlannedDividends = []model.Dividend{
		{ID: "d1", Symbol: "ABC", PayDate: "2024-03-15", Status: model.DividendPlanned},
	}
	return doc
}

func requireSameDocument(t *testing.T, want, got model.PortfolioDocument) {
	t.Helper()
	require.Equal(t, want.IsFirstVisit, got.IsFirstVisit)
	require.Len(t, got.Reports, len(want.Reports))
	require.Equal(t, want.Reports["2024-01"].TotalInvested.String(), got.Reports["2024-01"].TotalInvested.String())
	require.Equal(t, want.PlannedDividends, got.PlannedDividends)
}

func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStorage(filepath.Join(t.TempDir(), "nested", "portfolio.json"))

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	doc := sampleDocument()
	require.NoError(t, s.Save(ctx, doc))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	requireSameDocument(t, doc, loaded)
}

func TestFileStorage_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewFileStorage(filepath.Join(t.TempDir(), "portfolio.json"))

	require.NoError(t, s.Save(ctx, sampleDocument()))

	updated := sampleDocument()
	updated.IsFirstVisit = false
	require.NoError(t, s.Save(ctx, updated))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.False(t, loaded.IsFirstVisit)
}

func TestMemoryStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	doc := sampleDocument()
	require.NoError(t, s.Save(ctx, doc))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	requireSameDocument(t, doc, loaded)
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()

	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewSQLiteStorage(db)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	doc := sampleDocument()
	require.NoError(t, s.Save(ctx, doc))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	requireSameDocument(t, doc, loaded)

	// the single row is upserted, never duplicated
	updated := sampleDocument()
	updated.IsFirstVisit = false
	require.NoError(t, s.Save(ctx, updated))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM portfolio_document`))
	require.Equal(t, 1, count)

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.False(t, loaded.IsFirstVisit)
}
