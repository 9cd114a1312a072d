// Package export renders computed tables to delimited text and to XLSX
// workbooks. It works on prerendered string grids so that the display
// variants carry exactly the formatted values the consumer saw.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Grid is a rectangular table: one header row plus data rows, column
// order significant.
type Grid struct {
	Header []string
	Rows   [][]string
}

func (g Grid) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(g.Header); err != nil {
		return nil, err
	}
	for _, row := range g.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Workbook renders the grid as a single-sheet XLSX file. Cells that parse
// as plain numbers are written numerically so raw exports stay computable
// in a spreadsheet.
func (g Grid) Workbook(sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(g.Header))
	for i, h := range g.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(g.Header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return nil, err
	}

	for i, row := range g.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil && j > 0 {
				cells[j] = n
			} else {
				cells[j] = v
			}
		}
		start := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
