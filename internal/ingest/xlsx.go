package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// sheetRows reads the first worksheet of an XLSX byte buffer and returns
// its rows as formatted cell strings.
func sheetRows(source string, b []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("source %s: open workbook: %w", source, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("source %s: workbook has no sheets", source)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("source %s: read sheet %s: %w", source, sheets[0], err)
	}
	return rows, nil
}

// cell returns the value at column idx, or "" when the row is ragged.
// GetRows trims trailing empty cells per row.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseMoney reads a currency cell. Formatted exports may carry currency
// symbols and thousands separators; missing or unparseable cells count as
// zero, matching the sources' fill-with-zero policy.
func parseMoney(s string) decimal.Decimal {
	s = cleanNumber(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseCount reads an integral cell. Spreadsheets sometimes render counts
// as "2.0", so parse through float and round.
func parseCount(s string) int64 {
	s = cleanNumber(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f + 0.5)
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	return s
}

// excelEpoch is day zero of the 1900 date system: serial 1 is 1900-01-01,
// and the historical Lotus leap-year bug shifts the epoch back to
// 1899-12-30 for all serials in practical use.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-06",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDate normalizes a date cell to a UTC calendar date. Numeric cells
// are Excel serial day offsets from excelEpoch; anything else is tried
// against the common textual layouts.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t := excelEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
		return dayUTC(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dayUTC(t), true
		}
	}
	return time.Time{}, false
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
