// Package merge reconciles the two per-source daily aggregates into the
// single canonical daily table consumed by the metrics engine.
package merge

import (
	"time"

	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

// Combine performs a full outer join of transaction and campaign partial
// records on date. A date present on only one side keeps that side's
// fields and zeroes on the other; two empty inputs produce an empty
// table. Every canonical field of the result is set, never absent.
func Combine(tx, camp []models.DailyRecord) models.DailyTable {
	byDate := make(map[time.Time]*models.DailyRecord, len(tx)+len(camp))

	for _, r := range tx {
		rec := recordFor(byDate, r.Date)
		rec.Orders = r.Orders
		rec.TotalUnits = r.TotalUnits
		rec.Revenue = r.Revenue
		rec.NetRevenue = r.NetRevenue
		rec.PromotionDiscount = r.PromotionDiscount
	}
	for _, r := range camp {
		rec := recordFor(byDate, r.Date)
		rec.Impressions = r.Impressions
		rec.Clicks = r.Clicks
		rec.CampaignOrders = r.CampaignOrders
		rec.CampaignSpend = r.CampaignSpend
		rec.CampaignSales = r.CampaignSales
	}

	rows := make([]models.DailyRecord, 0, len(byDate))
	for _, rec := range byDate {
		rows = append(rows, *rec)
	}
	return models.NewDailyTable(rows)
}

func recordFor(byDate map[time.Time]*models.DailyRecord, date time.Time) *models.DailyRecord {
	d := models.DayUTC(date)
	rec, ok := byDate[d]
	if !ok {
		r := models.NewDailyRecord(d)
		rec = &r
		byDate[d] = rec
	}
	return rec
}
