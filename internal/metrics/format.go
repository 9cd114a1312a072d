package metrics

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

// Placeholder rendered for undefined metrics and, in the daily display
// table, for base fields that are zero.
const NA = "N/A"

type fieldKind int

const (
	kindCount fieldKind = iota
	kindCurrency
	kindPercent
	kindRatio
)

var fieldKinds = map[string]fieldKind{
	"Orders":                  kindCount,
	"Order Quantity":          kindCount,
	"Revenue":                 kindCurrency,
	"Net Revenue":             kindCurrency,
	"Item-Promotion-Discount": kindCurrency,
	"Impressions":             kindCount,
	"Clicks":                  kindCount,
	"Campaign Orders":         kindCount,
	"Campaign Spend":          kindCurrency,
	"Campaign Sales":          kindCurrency,
	"CTR":                     kindPercent,
	"CVR":                     kindPercent,
	"CPA":                     kindCurrency,
	"CPC":                     kindCurrency,
	"ROAS":                    kindRatio,
	"ACOS":                    kindPercent,
	"TACOS":                   kindPercent,
}

// FormatDaily renders one daily row for display, aligned with
// models.FieldNames. Base fields show the placeholder when zero; this is
// display-only sugar for sparse days, the underlying values stay zero.
func (r Row) FormatDaily() []string {
	return r.format(true, 0)
}

// FormatSummary renders a period summary row: every base field as a
// number, counts as integers.
func (r Row) FormatSummary() []string {
	return r.format(false, 0)
}

// FormatAverage renders a period average row. Averaged counts are
// fractional, so they keep one decimal place (impressions stay whole,
// they are too large for the fraction to read well).
func (r Row) FormatAverage() []string {
	return r.format(false, 1)
}

func (r Row) format(hideZeroBase bool, countDecimals int32) []string {
	base := []decimal.Decimal{
		r.Totals.Orders, r.Totals.TotalUnits, r.Totals.Revenue,
		r.Totals.NetRevenue, r.Totals.PromotionDiscount,
		r.Totals.Impressions, r.Totals.Clicks, r.Totals.CampaignOrders,
		r.Totals.CampaignSpend, r.Totals.CampaignSales,
	}
	derived := []decimal.NullDecimal{
		r.Derived.CTR, r.Derived.CVR, r.Derived.CPA, r.Derived.CPC,
		r.Derived.ROAS, r.Derived.ACOS, r.Derived.TACOS,
	}

	out := make([]string, 0, len(models.FieldNames))
	for i, name := range models.FieldNames {
		if i < len(base) {
			v := base[i]
			if hideZeroBase && v.IsZero() {
				out = append(out, NA)
				continue
			}
			switch fieldKinds[name] {
			case kindCurrency:
				out = append(out, formatCurrency(v))
			default:
				decimals := countDecimals
				if name == "Impressions" {
					decimals = 0
				}
				out = append(out, v.StringFixed(decimals))
			}
			continue
		}
		d := derived[i-len(base)]
		if !d.Valid {
			out = append(out, NA)
			continue
		}
		switch fieldKinds[name] {
		case kindCurrency:
			out = append(out, formatCurrency(d.Decimal))
		case kindRatio:
			out = append(out, d.Decimal.StringFixed(2)+"x")
		default:
			out = append(out, d.Decimal.StringFixed(2)+"%")
		}
	}
	return out
}

// FormatLift renders lift entries as signed percentages, placeholder
// where the baseline made the lift undefined.
func FormatLift(entries []LiftEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Pct.Valid {
			out = append(out, NA)
			continue
		}
		s := e.Pct.Decimal.StringFixed(2) + "%"
		if !e.Pct.Decimal.IsNegative() {
			s = "+" + s
		}
		out = append(out, s)
	}
	return out
}

// RawStrings renders the raw-export view as plain numbers, sentinels as
// zero. Counterpart of the Format* display renderings.
func RawStrings(r Row) []string {
	vals := rawValues(r)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func formatCurrency(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "$" + humanize.FormatFloat("#,###.##", f)
}
