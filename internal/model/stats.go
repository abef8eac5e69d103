package model

import "github.com/shopspring/decimal"

// MonthDelta is one month's net gain within a yearly breakdown.
type MonthDelta struct {
	Month int
	Delta decimal.Decimal
}

type YearlyStats struct {
	Year          int
	TotalInvested decimal.Decimal
	DeltaProfit   decimal.Decimal
	ROI           decimal.Decimal
	Months        []MonthDelta
	BestMonth     *MonthDelta
}

type GlobalStats struct {
	TotalInvested       decimal.Decimal
	StockProfit         decimal.Decimal
	DividendProfit      decimal.Decimal
	TotalAbsoluteProfit decimal.Decimal
	ROI                 decimal.Decimal
	LatestPositions     []OpenPosition
}

// DividendOverview sums the dividend calendar for one calendar year.
type DividendOverview struct {
	Year     int
	Received decimal.Decimal
	Planned  decimal.Decimal
	Total    decimal.Decimal
}
