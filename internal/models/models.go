package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DailyRecord is one row of the unified daily table: everything the two
// sources contributed for a single calendar date, zero-filled where a
// source had nothing.
type DailyRecord struct {
	Date              time.Time       `json:"date"`
	Orders            int64           `json:"orders"`
	TotalUnits        int64           `json:"total_units"`
	Revenue           decimal.Decimal `json:"revenue"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	PromotionDiscount decimal.Decimal `json:"promotion_discount"`
	Impressions       int64           `json:"impressions"`
	Clicks            int64           `json:"clicks"`
	CampaignOrders    int64           `json:"campaign_orders"`
	CampaignSpend     decimal.Decimal `json:"campaign_spend"`
	CampaignSales     decimal.Decimal `json:"campaign_sales"`
}

func NewDailyRecord(date time.Time) DailyRecord {
	return DailyRecord{
		Date:              DayUTC(date),
		Revenue:           decimal.Zero,
		NetRevenue:        decimal.Zero,
		PromotionDiscount: decimal.Zero,
		CampaignSpend:     decimal.Zero,
		CampaignSales:     decimal.Zero,
	}
}

// DailyTable holds the merged records sorted by date. It is built once by
// the merger and only read after that.
type DailyTable struct {
	rows  []DailyRecord
	index map[time.Time]int
}

func NewDailyTable(rows []DailyRecord) DailyTable {
	sorted := make([]DailyRecord, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	idx := make(map[time.Time]int, len(sorted))
	for i, r := range sorted {
		idx[r.Date] = i
	}
	return DailyTable{rows: sorted, index: idx}
}

func (t DailyTable) Len() int { return len(t.rows) }

// Rows returns the records in date order. Callers must not mutate the
// returned slice.
func (t DailyTable) Rows() []DailyRecord { return t.rows }

func (t DailyTable) Dates() []time.Time {
	out := make([]time.Time, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Date
	}
	return out
}

func (t DailyTable) Get(date time.Time) (DailyRecord, bool) {
	i, ok := t.index[DayUTC(date)]
	if !ok {
		return DailyRecord{}, false
	}
	return t.rows[i], true
}

// Filter returns the records whose date is in the given selection, in
// date order. Duplicate and unknown dates in the selection are ignored.
func (t DailyTable) Filter(dates []time.Time) []DailyRecord {
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		seen[DayUTC(d)] = struct{}{}
	}
	var out []DailyRecord
	for _, r := range t.rows {
		if _, ok := seen[r.Date]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FieldNames is the canonical display order of base fields and derived
// metrics, shared by every formatted output and export.
var FieldNames = []string{
	"Orders",
	"Order Quantity",
	"Revenue",
	"Net Revenue",
	"Item-Promotion-Discount",
	"Impressions",
	"Clicks",
	"Campaign Orders",
	"Campaign Spend",
	"Campaign Sales",
	"CTR",
	"CVR",
	"CPA",
	"CPC",
	"ROAS",
	"ACOS",
	"TACOS",
}

// DayUTC truncates a time to its UTC calendar date.
func DayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
