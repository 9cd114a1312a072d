package export

import (
	"github.com/awu339/LeadIn-LeadOut/internal/metrics"
	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

// DailyGrid lays the daily table out in its display orientation: metric
// names down the first column, one column per date. display selects the
// formatted rendering; raw substitutes zero for undefined metrics.
func DailyGrid(rows []metrics.DailyRow, display bool) Grid {
	header := make([]string, 0, len(rows)+1)
	header = append(header, "Metric")
	for _, r := range rows {
		header = append(header, r.Date.Format("2006-01-02"))
	}

	cols := make([][]string, len(rows))
	for i, r := range rows {
		if display {
			cols[i] = r.FormatDaily()
		} else {
			cols[i] = metrics.RawStrings(r.Row)
		}
	}

	grid := Grid{Header: header}
	for fi, name := range models.FieldNames {
		row := make([]string, 0, len(rows)+1)
		row = append(row, name)
		for _, col := range cols {
			row = append(row, col[fi])
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// PeriodRows pairs one named period selection with its computed summary
// and per-day average.
type PeriodRows struct {
	Name    string
	Summary metrics.Row
	Average metrics.Row
}

// PeriodGrid renders period summaries and averages side by side, two
// columns per period, metric names down the first column.
func PeriodGrid(periods []PeriodRows, display bool) Grid {
	header := []string{"Metric"}
	cols := make([][]string, 0, 2*len(periods))
	for _, p := range periods {
		header = append(header, p.Name+" (Total)", p.Name+" (Daily Avg)")
		if display {
			cols = append(cols, p.Summary.FormatSummary(), p.Average.FormatAverage())
		} else {
			cols = append(cols, metrics.RawStrings(p.Summary), metrics.RawStrings(p.Average))
		}
	}

	grid := Grid{Header: header}
	for fi, name := range models.FieldNames {
		row := []string{name}
		for _, col := range cols {
			row = append(row, col[fi])
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// LiftColumn is one named baseline/comparison pairing with its computed
// per-metric lifts.
type LiftColumn struct {
	Name    string
	Entries []metrics.LiftEntry
}

// LiftGrid renders the lift table: metric rows, one column per named
// comparison, signed percentages or the placeholder.
func LiftGrid(columns []LiftColumn, display bool) Grid {
	header := []string{"Metric"}
	cols := make([][]string, 0, len(columns))
	for _, c := range columns {
		header = append(header, c.Name)
		if display {
			cols = append(cols, metrics.FormatLift(c.Entries))
		} else {
			vals := make([]string, len(c.Entries))
			for i, e := range c.Entries {
				if e.Pct.Valid {
					vals[i] = e.Pct.Decimal.String()
				} else {
					vals[i] = "0"
				}
			}
			cols = append(cols, vals)
		}
	}

	grid := Grid{Header: header}
	for fi, name := range models.FieldNames {
		row := []string{name}
		for _, col := range cols {
			row = append(row, col[fi])
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}
