package model

import "github.com/shopspring/decimal"

type DividendStatus string

const (
	DividendPlanned  DividendStatus = "planned"
	DividendReceived DividendStatus = "received"
)

// Dividend is a planned or realized dividend event. Received dividends carry
// a frozen TotalAmount imported from the statement; planned ones get
// AmountPerShare and TotalAmount recomputed against the latest snapshot.
type Dividend struct {
	ID              string          `json:"id"`
	Symbol          string          `json:"symbol"`
	YieldPercentage decimal.Decimal `json:"yieldPercentage"`
	PayDate         string          `json:"payDate"`
	Status          DividendStatus  `json:"status"`
	AmountPerShare  decimal.Decimal `json:"amountPerShare"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}
