package metrics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

// ErrEmptySelection rejects period computations over zero matching dates
// before they can turn into a division artifact.
var ErrEmptySelection = errors.New("period selection matches no dates in the dataset")

// Row is one computed result: base fields plus the ratios derived from
// them. The same shape serves daily rows, period summaries and period
// averages.
type Row struct {
	Totals  Totals  `json:"totals"`
	Derived Derived `json:"derived"`
}

// DailyRow is a Row pinned to its calendar date.
type DailyRow struct {
	Date time.Time `json:"date"`
	Row
}

// Service reads a merged daily table and derives everything the consumer
// can ask for. It never mutates the table.
type Service struct {
	table models.DailyTable
}

func NewService(table models.DailyTable) *Service {
	return &Service{table: table}
}

func (s *Service) Dates() []time.Time { return s.table.Dates() }

// Daily computes one row per date in the table, each derived
// independently from that day's base fields.
func (s *Service) Daily() []DailyRow {
	out := make([]DailyRow, 0, s.table.Len())
	for _, rec := range s.table.Rows() {
		t := TotalsFrom(rec)
		out = append(out, DailyRow{Date: rec.Date, Row: Row{Totals: t, Derived: Derive(t)}})
	}
	return out
}

// PeriodSummary sums the base fields over the selected dates and derives
// the ratios once from those sums.
func (s *Service) PeriodSummary(dates []time.Time) (Row, error) {
	sum, _, err := s.sumPeriod(dates)
	if err != nil {
		return Row{}, err
	}
	return Row{Totals: sum, Derived: Derive(sum)}, nil
}

// PeriodAverage divides the period sums by the number of distinct dates
// that actually have rows, then derives. Requested dates absent from the
// dataset do not inflate the divisor.
func (s *Service) PeriodAverage(dates []time.Time) (Row, error) {
	sum, days, err := s.sumPeriod(dates)
	if err != nil {
		return Row{}, err
	}
	avg := sum.DivDays(days)
	return Row{Totals: avg, Derived: Derive(avg)}, nil
}

func (s *Service) sumPeriod(dates []time.Time) (Totals, int64, error) {
	rows := s.table.Filter(dates)
	if len(rows) == 0 {
		return Totals{}, 0, ErrEmptySelection
	}
	var sum Totals
	for _, rec := range rows {
		sum = sum.Add(TotalsFrom(rec))
	}
	return sum, int64(len(rows)), nil
}

// LiftEntry is the percentage change of one metric between two periods,
// invalid when the baseline value is zero.
type LiftEntry struct {
	Field string              `json:"field"`
	Pct   decimal.NullDecimal `json:"pct"`
}

// Lift compares two period rows field by field in canonical order:
// (comparison − baseline) / baseline × 100. Undefined derived metrics
// enter the comparison as zero, matching the raw-export convention, so a
// sentinel baseline also yields an invalid lift.
func Lift(baseline, comparison Row) []LiftEntry {
	base := rawValues(baseline)
	comp := rawValues(comparison)
	out := make([]LiftEntry, 0, len(models.FieldNames))
	for i, name := range models.FieldNames {
		e := LiftEntry{Field: name}
		if !base[i].IsZero() {
			e.Pct = decimal.NullDecimal{
				Decimal: comp[i].Sub(base[i]).Div(base[i]).Mul(hundred),
				Valid:   true,
			}
		}
		out = append(out, e)
	}
	return out
}

// rawValues flattens a Row to canonical field order with sentinels
// collapsed to zero. This is the raw-export view of a row.
func rawValues(r Row) []decimal.Decimal {
	derived := []decimal.NullDecimal{
		r.Derived.CTR, r.Derived.CVR, r.Derived.CPA, r.Derived.CPC,
		r.Derived.ROAS, r.Derived.ACOS, r.Derived.TACOS,
	}
	out := []decimal.Decimal{
		r.Totals.Orders, r.Totals.TotalUnits, r.Totals.Revenue,
		r.Totals.NetRevenue, r.Totals.PromotionDiscount,
		r.Totals.Impressions, r.Totals.Clicks, r.Totals.CampaignOrders,
		r.Totals.CampaignSpend, r.Totals.CampaignSales,
	}
	for _, d := range derived {
		if d.Valid {
			out = append(out, d.Decimal)
		} else {
			out = append(out, decimal.Zero)
		}
	}
	return out
}

// RawValues exposes the raw-export view: values aligned with
// models.FieldNames, undefined metrics as zero.
func RawValues(r Row) []decimal.Decimal { return rawValues(r) }
