package screening

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

// utf8BOM prefixes exports so spreadsheet tools detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportFilename encodes mode, board filter and run date into the CSV name.
func ExportFilename(result *contracts.RunResult) string {
	board := result.Board
	if board == "" {
		board = "all"
	}
	return fmt.Sprintf("screen_%s_%s_%s.csv", result.Mode, board, result.TradeDate.Format("20060102"))
}

// WriteCSV renders the result table as UTF-8 (with BOM) comma-separated
// values, one row per instrument. Metric columns not produced by the row's
// classification stay empty.
func WriteCSV(w io.Writer, result *contracts.RunResult) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)

	header := []string{"symbol", "name", "board", "exchange", "industry", "last_price", "pct_change", "class"}
	if result.Mode.WantsStreak() {
		header = append(header, "streak_days")
	}
	if result.Mode.WantsTrend() {
		header = append(header, "return_60d_pct", "volatility_20d_pct")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range result.Rows {
		record := []string{
			row.Symbol,
			row.Name,
			row.Board,
			row.ExchangeName,
			row.Industry,
			strconv.FormatFloat(row.LastPrice, 'f', 2, 64),
			strconv.FormatFloat(row.PctChange, 'f', 2, 64),
			string(row.Class),
		}
		if result.Mode.WantsStreak() {
			record = append(record, formatStreak(row))
		}
		if result.Mode.WantsTrend() {
			record = append(record, formatTrendMetrics(row)...)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.Symbol, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatStreak renders the streak column; only streak rows carry a value.
func formatStreak(row contracts.ResultRow) string {
	if row.Class != contracts.ClassStreak {
		return ""
	}
	return strconv.Itoa(row.StreakDays)
}

// formatTrendMetrics renders the trend columns; only trend rows carry them.
func formatTrendMetrics(row contracts.ResultRow) []string {
	if row.Class != contracts.ClassTrend {
		return []string{"", ""}
	}
	return []string{
		strconv.FormatFloat(row.Return60, 'f', 2, 64),
		strconv.FormatFloat(row.Volatility20, 'f', 2, 64),
	}
}
