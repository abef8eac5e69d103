package xlsxParser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xtbdash/invest_dash/internal/model"
	"github.com/xtbdash/invest_dash/internal/parser"
	"github.com/xtbdash/invest_dash/utils"
	"github.com/xuri/excelize/v2"
)

const (
	positionsSheetMarker = "OPEN POSITION"
	dividendsSheetMarker = "CASH OPERATION HISTORY"

	// XTB statements carry account summary rows above the positions table,
	// the header itself sits on row 11.
	positionsHeaderRow = 10

	// spreadsheet day 25569 = 1970-01-01
	excelEpochOffsetDays = 25569
)

var dividendTypeMarkers = []string{"DIVIDEND", "DIVIDENT"} // the misspelling ships in real exports

type XLSXParser struct{}

func New() *XLSXParser {
	return &XLSXParser{}
}

// ParseOpenPositions reads the open-positions sheet of an XTB statement and
// folds its trade rows into one position per symbol, sorted by purchase
// value descending. Unreadable numeric cells degrade to zero and are
// reported in the returned warning list.
func (p *XLSXParser) ParseOpenPositions(ctx context.Context, data []byte) ([]model.OpenPosition, []string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXParser.ParseOpenPositions"

	slog.Debug("ParseOpenPositions start", slog.String("rqID", rqID), slog.String("op", op))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		slog.Error("can't open workbook", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, nil, fmt.Errorf("%w: %s", parser.ErrParse, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing workbook", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheet := findSheet(f, positionsSheetMarker, true)

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		slog.Error("can't read sheet rows", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", sheet), slog.String("err", err.Error()))
		return nil, nil, fmt.Errorf("%w: %s", parser.ErrParse, err)
	}

	if len(rows) <= positionsHeaderRow {
		return nil, nil, fmt.Errorf("%w: positions header row not found in sheet %q", parser.ErrParse, sheet)
	}

	cols := columnIndex(rows[positionsHeaderRow])
	symbolCol, ok := cols["Symbol"]
	if !ok {
		return nil, nil, fmt.Errorf("%w: Symbol column not found in sheet %q", parser.ErrParse, sheet)
	}

	var (
		acc      = make(map[string]*model.OpenPosition)
		order    []string
		warnings []string
	)

	for _, row := range rows[positionsHeaderRow+1:] {
		symbol := cell(row, symbolCol)
		if symbol == "" || cell(row, col(cols, "Position")) == "Total" {
			continue
		}

		volume := parseAmount(cell(row, col(cols, "Volume")), symbol, "Volume", &warnings)
		purchaseValue := parseAmount(cell(row, col(cols, "Purchase value")), symbol, "Purchase value", &warnings)
		profit := parseAmount(cell(row, col(cols, "Gross P/L")), symbol, "Gross P/L", &warnings)
		openTime := parseOpenTime(cell(row, col(cols, "Open time")))

		pos, ok := acc[symbol]
		if !ok {
			pos = &model.OpenPosition{Symbol: symbol, OpenTime: openTime}
			acc[symbol] = pos
			order = append(order, symbol)
		} else if openTime.Before(pos.OpenTime) {
			pos.OpenTime = openTime
		}

		pos.Volume = pos.Volume.Add(volume)
		pos.PurchaseValue = pos.PurchaseValue.Add(purchaseValue)
		pos.Profit = pos.Profit.Add(profit)
		pos.CurrentValue = pos.CurrentValue.Add(purchaseValue.Add(profit))
	}

	positions := make([]model.OpenPosition, 0, len(order))
	for _, symbol := range order {
		pos := acc[symbol]
		if pos.Volume.IsPositive() {
			pos.AvgPurchasePrice = pos.PurchaseValue.Div(pos.Volume)
			pos.CurrentPrice = pos.CurrentValue.Div(pos.Volume)
		}
		positions = append(positions, *pos)
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].PurchaseValue.GreaterThan(positions[j].PurchaseValue)
	})

	slog.Debug("ParseOpenPositions finished",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("positions", len(positions)),
		slog.Int("warnings", len(warnings)),
	)

	return positions, warnings, nil
}

// ParseDividends extracts realized dividend payouts from the cash-operations
// sheet. A missing sheet or header is an expected outcome, not every export
// has one, so both return an empty result with no error.
func (p *XLSXParser) ParseDividends(ctx context.Context, data []byte) ([]model.Dividend, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXParser.ParseDividends"

	slog.Debug("ParseDividends start", slog.String("rqID", rqID), slog.String("op", op))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		slog.Error("can't open workbook", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %s", parser.ErrParse, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing workbook", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheet := findSheet(f, dividendsSheetMarker, false)
	if sheet == "" {
		slog.Debug("cash operations sheet not found, skipping", slog.String("rqID", rqID), slog.String("op", op))
		return nil, nil
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		slog.Error("can't read sheet rows", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", sheet), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %s", parser.ErrParse, err)
	}

	headerIdx := -1
	var cols map[string]int
	for i, row := range rows {
		c := columnIndex(row)
		if hasAll(c, "Symbol", "Amount", "Type") {
			headerIdx = i
			cols = c
			break
		}
	}
	if headerIdx == -1 {
		slog.Debug("cash operations header not found, skipping", slog.String("rqID", rqID), slog.String("op", op))
		return nil, nil
	}

	var dividends []model.Dividend
	for _, row := range rows[headerIdx+1:] {
		operationType := strings.ToUpper(cell(row, col(cols, "Type")))
		if !containsAny(operationType, dividendTypeMarkers) {
			continue
		}

		symbol := stripExchangeSuffix(cell(row, col(cols, "Symbol")))
		if symbol == "" {
			symbol = "Cash"
		}

		amount, _ := decimal.NewFromString(normalizeNumber(cell(row, col(cols, "Amount"))))

		dividends = append(dividends, model.Dividend{
			ID:          uuid.NewString(),
			Symbol:      symbol,
			PayDate:     formatPayDate(cell(row, col(cols, "Time"))),
			Status:      model.DividendReceived,
			TotalAmount: amount.Abs(),
		})
	}

	slog.Debug("ParseDividends finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("dividends", len(dividends)))

	return dividends, nil
}

// findSheet returns the first sheet whose name contains marker. With
// fallback set it returns the first sheet of the workbook instead of "".
func findSheet(f *excelize.File, marker string, fallback bool) string {
	sheets := f.GetSheetList()
	for _, name := range sheets {
		if strings.Contains(strings.ToUpper(name), marker) {
			return name
		}
	}
	if fallback && len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

func columnIndex(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	return cols
}

func hasAll(cols map[string]int, names ...string) bool {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return false
		}
	}
	return true
}

func col(cols map[string]int, name string) int {
	idx, ok := cols[name]
	if !ok {
		return -1
	}
	return idx
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// parseAmount turns a raw cell into a decimal. Empty cells are silent
// zeros, present but unreadable cells are zeroed and reported.
func parseAmount(raw, symbol, column string, warnings *[]string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(normalizeNumber(raw))
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: unreadable %s cell %q, counted as 0", symbol, column, raw))
		return decimal.Zero
	}
	return d
}

// normalizeNumber strips grouping spaces and converts the comma decimal
// separator used by localized exports.
func normalizeNumber(raw string) string {
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, " ", "")
	return strings.ReplaceAll(raw, ",", ".")
}

func stripExchangeSuffix(symbol string) string {
	for _, suffix := range []string{".PL", ".UK", ".US"} {
		symbol = strings.Replace(symbol, suffix, "", 1)
	}
	return symbol
}

func parseOpenTime(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return serialToTime(serial)
	}
	if t, ok := parseSlashDate(raw); ok {
		return t
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// formatPayDate normalizes a serial number, a DD/MM/YYYY[ HH:MM] string or
// an ISO-like string into plain YYYY-MM-DD.
func formatPayDate(raw string) string {
	if raw == "" {
		return time.Now().UTC().Format(time.DateOnly)
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return serialToTime(serial).Format(time.DateOnly)
	}
	if t, ok := parseSlashDate(raw); ok {
		return t.Format(time.DateOnly)
	}
	datePart := strings.SplitN(raw, "T", 2)[0]
	if fields := strings.Fields(datePart); len(fields) > 0 {
		return fields[0]
	}
	return datePart
}

func parseSlashDate(raw string) (time.Time, bool) {
	if !strings.Contains(raw, "/") {
		return time.Time{}, false
	}
	datePart := strings.Fields(raw)[0]
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	t, err := time.Parse("2/1/2006", strings.Join(parts, "/"))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func serialToTime(serial float64) time.Time {
	ms := int64((serial - excelEpochOffsetDays) * 86400 * 1000)
	return time.UnixMilli(ms).UTC()
}
