package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OpenPosition is one instrument's accumulated holding within a monthly
// snapshot. All raw trade rows sharing a symbol are folded into one entry.
type OpenPosition struct {
	Symbol           string          `json:"symbol"`
	Volume           decimal.Decimal `json:"volume"`
	PurchaseValue    decimal.Decimal `json:"purchaseValue"`
	CurrentValue     decimal.Decimal `json:"currentValue"`
	Profit           decimal.Decimal `json:"profit"`
	AvgPurchasePrice decimal.Decimal `json:"avgPurchasePrice"`
	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	OpenTime         time.Time       `json:"openTime"`
}

// MonthData is the aggregated portfolio state for one calendar month,
// derived from one uploaded statement.
type MonthData struct {
	ID             string          `json:"id"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Positions      []OpenPosition  `json:"positions"`
	TotalInvested  decimal.Decimal `json:"totalInvested"`
	TotalProfit    decimal.Decimal `json:"totalProfit"`
	MonthlyNetGain decimal.Decimal `json:"monthlyNetGain"`
}

// PortfolioDocument is the whole persisted state: one report per period plus
// the dividend list. It is saved and restored as a single JSON document.
type PortfolioDocument struct {
	Reports          map[string]MonthData `json:"reports"`
	PlannedDividends []Dividend           `json:"plannedDividends"`
	IsFirstVisit     bool                 `json:"isFirstVisit"`
}

// NewPortfolioDocument returns an empty document for a first run.
func NewPortfolioDocument() PortfolioDocument {
	return PortfolioDocument{
		Reports:          make(map[string]MonthData),
		PlannedDividends: make([]Dividend, 0),
		IsFirstVisit:     true,
	}
}

// PeriodKey builds the report map key, e.g. "2024-03".
func PeriodKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}
