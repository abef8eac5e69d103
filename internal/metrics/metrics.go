// Package metrics holds the pure derived-statistics functions over the
// portfolio document. Same document in, same result out, no side effects.
package metrics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xtbdash/invest_dash/internal/model"
)

var hundred = decimal.NewFromInt(100)

// PreviousSnapshot returns the report of the immediately preceding calendar
// month, December of the previous year for January. The report map is keyed
// by period, so this is a direct lookup.
func PreviousSnapshot(doc model.PortfolioDocument, year, month int) (model.MonthData, bool) {
	prevYear, prevMonth := year, month-1
	if month == 1 {
		prevYear, prevMonth = year-1, 12
	}
	report, ok := doc.Reports[model.PeriodKey(prevYear, prevMonth)]
	return report, ok
}

// MonthlyDelta is the period's net gain: cumulative profit minus the
// previous snapshot's cumulative profit, or the profit itself for the first
// snapshot on record.
func MonthlyDelta(doc model.PortfolioDocument, report model.MonthData) decimal.Decimal {
	prev, ok := PreviousSnapshot(doc, report.Year, report.Month)
	if !ok {
		return report.TotalProfit
	}
	return report.TotalProfit.Sub(prev.TotalProfit)
}

// ReportsForYear returns the year's snapshots ordered by month ascending.
func ReportsForYear(doc model.PortfolioDocument, year int) []model.MonthData {
	var reports []model.MonthData
	for _, report := range doc.Reports {
		if report.Year == year {
			reports = append(reports, report)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Month < reports[j].Month })
	return reports
}

// ReportsChronological returns every snapshot ordered by year then month.
func ReportsChronological(doc model.PortfolioDocument) []model.MonthData {
	reports := make([]model.MonthData, 0, len(doc.Reports))
	for _, report := range doc.Reports {
		reports = append(reports, report)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Year != reports[j].Year {
			return reports[i].Year < reports[j].Year
		}
		return reports[i].Month < reports[j].Month
	})
	return reports
}

// Years lists every year with at least one snapshot, descending.
func Years(doc model.PortfolioDocument) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, report := range doc.Reports {
		if _, ok := seen[report.Year]; !ok {
			seen[report.Year] = struct{}{}
			years = append(years, report.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// YearlyStats rolls the year's monthly deltas up into a yearly result. ROI
// is measured against the invested capital of the latest month in the year.
func YearlyStats(doc model.PortfolioDocument, year int) model.YearlyStats {
	reports := ReportsForYear(doc, year)
	stats := model.YearlyStats{Year: year}
	if len(reports) == 0 {
		return stats
	}

	latest := reports[len(reports)-1]
	stats.TotalInvested = latest.TotalInvested
	stats.Months = make([]model.MonthDelta, 0, len(reports))

	for _, report := range reports {
		delta := MonthlyDelta(doc, report)
		stats.DeltaProfit = stats.DeltaProfit.Add(delta)
		stats.Months = append(stats.Months, model.MonthDelta{Month: report.Month, Delta: delta})
	}

	best := stats.Months[0]
	for _, m := range stats.Months[1:] {
		if m.Delta.GreaterThan(best.Delta) {
			best = m
		}
	}
	stats.BestMonth = &best

	if !latest.TotalInvested.IsZero() {
		stats.ROI = stats.DeltaProfit.Div(latest.TotalInvested).Mul(hundred)
	}

	return stats
}

// GlobalStats aggregates across every snapshot. Stock profit is the sum of
// all monthly deltas, dividend profit the sum of received payouts, and ROI
// relates both to the invested capital of the newest snapshot.
func GlobalStats(doc model.PortfolioDocument) (model.GlobalStats, bool) {
	reports := ReportsChronological(doc)
	if len(reports) == 0 {
		return model.GlobalStats{}, false
	}

	latest := reports[len(reports)-1]

	stats := model.GlobalStats{
		TotalInvested:   latest.TotalInvested,
		LatestPositions: latest.Positions,
	}

	for _, report := range reports {
		stats.StockProfit = stats.StockProfit.Add(MonthlyDelta(doc, report))
	}

	for _, div := range doc.PlannedDividends {
		if div.Status == model.DividendReceived {
			stats.DividendProfit = stats.DividendProfit.Add(div.TotalAmount)
		}
	}

	stats.TotalAbsoluteProfit = stats.StockProfit.Add(stats.DividendProfit)

	if !latest.TotalInvested.IsZero() {
		stats.ROI = stats.TotalAbsoluteProfit.Div(latest.TotalInvested).Mul(hundred)
	}

	return stats, true
}

// LatestPositions returns the newest snapshot's position list, or nil when
// no report was uploaded yet.
func LatestPositions(doc model.PortfolioDocument) []model.OpenPosition {
	reports := ReportsChronological(doc)
	if len(reports) == 0 {
		return nil
	}
	return reports[len(reports)-1].Positions
}

// ForecastDividend fills in the forecast amounts of a planned dividend from
// the latest known holding of its symbol. Received dividends with a frozen
// amount and dividends whose symbol left the portfolio pass through
// unchanged.
func ForecastDividend(div model.Dividend, latestPositions []model.OpenPosition) model.Dividend {
	if div.Status == model.DividendReceived && !div.TotalAmount.IsZero() {
		return div
	}

	for _, pos := range latestPositions {
		if pos.Symbol != div.Symbol {
			continue
		}
		price := pos.CurrentPrice
		if price.IsZero() && !pos.Volume.IsZero() {
			price = pos.PurchaseValue.Add(pos.Profit).Div(pos.Volume)
		}
		div.AmountPerShare = price.Mul(div.YieldPercentage.Div(hundred))
		div.TotalAmount = div.AmountPerShare.Mul(pos.Volume)
		return div
	}

	return div
}

// ForecastDividends forecasts the whole dividend list against the latest
// snapshot, sorted by pay date ascending.
func ForecastDividends(doc model.PortfolioDocument) []model.Dividend {
	latest := LatestPositions(doc)
	dividends := make([]model.Dividend, 0, len(doc.PlannedDividends))
	for _, div := range doc.PlannedDividends {
		dividends = append(dividends, ForecastDividend(div, latest))
	}
	sort.SliceStable(dividends, func(i, j int) bool { return dividends[i].PayDate < dividends[j].PayDate })
	return dividends
}

// DividendOverview sums the forecasted calendar for one year.
func DividendOverview(doc model.PortfolioDocument, year int) model.DividendOverview {
	overview := model.DividendOverview{Year: year}
	prefix := strconv.Itoa(year) + "-"

	for _, div := range ForecastDividends(doc) {
		if !strings.HasPrefix(div.PayDate, prefix) {
			continue
		}
		switch div.Status {
		case model.DividendReceived:
			overview.Received = overview.Received.Add(div.TotalAmount)
		case model.DividendPlanned:
			overview.Planned = overview.Planned.Add(div.TotalAmount)
		}
	}

	overview.Total = overview.Received.Add(overview.Planned)
	return overview
}
