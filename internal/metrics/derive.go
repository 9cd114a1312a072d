// Package metrics derives the marketing-performance ratios from the
// daily table and aggregates them over analyst-selected periods. Base
// fields travel as decimals; every derived ratio is a decimal.NullDecimal
// whose Valid flag distinguishes "undefined" (zero denominator) from a
// genuine zero. The flag survives until the formatting boundary.
package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals is the all-decimal mirror of a DailyRecord's numeric fields. It
// doubles as the period pseudo-record: sums and per-day averages keep the
// same shape, so one Derive covers every aggregation path.
type Totals struct {
	Orders            decimal.Decimal `json:"orders"`
	TotalUnits        decimal.Decimal `json:"total_units"`
	Revenue           decimal.Decimal `json:"revenue"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	PromotionDiscount decimal.Decimal `json:"promotion_discount"`
	Impressions       decimal.Decimal `json:"impressions"`
	Clicks            decimal.Decimal `json:"clicks"`
	CampaignOrders    decimal.Decimal `json:"campaign_orders"`
	CampaignSpend     decimal.Decimal `json:"campaign_spend"`
	CampaignSales     decimal.Decimal `json:"campaign_sales"`
}

func TotalsFrom(r models.DailyRecord) Totals {
	return Totals{
		Orders:            decimal.NewFromInt(r.Orders),
		TotalUnits:        decimal.NewFromInt(r.TotalUnits),
		Revenue:           r.Revenue,
		NetRevenue:        r.NetRevenue,
		PromotionDiscount: r.PromotionDiscount,
		Impressions:       decimal.NewFromInt(r.Impressions),
		Clicks:            decimal.NewFromInt(r.Clicks),
		CampaignOrders:    decimal.NewFromInt(r.CampaignOrders),
		CampaignSpend:     r.CampaignSpend,
		CampaignSales:     r.CampaignSales,
	}
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Orders:            t.Orders.Add(o.Orders),
		TotalUnits:        t.TotalUnits.Add(o.TotalUnits),
		Revenue:           t.Revenue.Add(o.Revenue),
		NetRevenue:        t.NetRevenue.Add(o.NetRevenue),
		PromotionDiscount: t.PromotionDiscount.Add(o.PromotionDiscount),
		Impressions:       t.Impressions.Add(o.Impressions),
		Clicks:            t.Clicks.Add(o.Clicks),
		CampaignOrders:    t.CampaignOrders.Add(o.CampaignOrders),
		CampaignSpend:     t.CampaignSpend.Add(o.CampaignSpend),
		CampaignSales:     t.CampaignSales.Add(o.CampaignSales),
	}
}

// DivDays scales the totals down to per-day values. Callers guarantee
// days > 0.
func (t Totals) DivDays(days int64) Totals {
	n := decimal.NewFromInt(days)
	return Totals{
		Orders:            t.Orders.Div(n),
		TotalUnits:        t.TotalUnits.Div(n),
		Revenue:           t.Revenue.Div(n),
		NetRevenue:        t.NetRevenue.Div(n),
		PromotionDiscount: t.PromotionDiscount.Div(n),
		Impressions:       t.Impressions.Div(n),
		Clicks:            t.Clicks.Div(n),
		CampaignOrders:    t.CampaignOrders.Div(n),
		CampaignSpend:     t.CampaignSpend.Div(n),
		CampaignSales:     t.CampaignSales.Div(n),
	}
}

// Derived carries the seven ratio metrics. An invalid NullDecimal means
// the metric's denominator was zero for the record it was derived from.
type Derived struct {
	CTR   decimal.NullDecimal `json:"ctr"`
	CVR   decimal.NullDecimal `json:"cvr"`
	CPA   decimal.NullDecimal `json:"cpa"`
	CPC   decimal.NullDecimal `json:"cpc"`
	ROAS  decimal.NullDecimal `json:"roas"`
	ACOS  decimal.NullDecimal `json:"acos"`
	TACOS decimal.NullDecimal `json:"tacos"`
}

// Derive applies the ratio formulas to one record or one period
// pseudo-record. Always ratio-of-sums for periods: the caller sums (or
// averages) the base fields first and derives exactly once.
func Derive(t Totals) Derived {
	return Derived{
		CTR:   pct(t.Clicks, t.Impressions),
		CVR:   pct(t.CampaignOrders, t.Clicks),
		CPA:   ratio(t.CampaignSpend, t.CampaignOrders),
		CPC:   ratio(t.CampaignSpend, t.Clicks),
		ROAS:  ratio(t.CampaignSales, t.CampaignSpend),
		ACOS:  pct(t.CampaignSpend, t.CampaignSales),
		TACOS: pct(t.CampaignSpend, t.Revenue),
	}
}

func ratio(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: num.Div(den), Valid: true}
}

func pct(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: num.Div(den).Mul(hundred), Valid: true}
}
