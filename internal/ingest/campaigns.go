package ingest

import (
	"log/slog"
	"sort"
	"time"

	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

// The three ad products share one export layout; only the attribution
// window in the orders/sales headers differs.
var (
	spSchema = campaignSchema("sponsored-products", 7)
	sbSchema = campaignSchema("sponsored-brands", 14)
	sdSchema = campaignSchema("sponsored-display", 14)
)

// Campaigns parses the three optional ad-product exports and returns one
// partial record per date with all products summed together. A nil buffer
// skips its source; a present source missing a required column fails the
// whole run.
func (in *Ingestor) Campaigns(sp, sb, sd []byte) ([]models.DailyRecord, DropStats, error) {
	var drops DropStats
	byDate := make(map[time.Time]*models.DailyRecord)

	sources := []struct {
		schema SourceSchema
		data   []byte
	}{
		{spSchema, sp},
		{sbSchema, sb},
		{sdSchema, sd},
	}
	parsed := 0
	for _, src := range sources {
		if len(src.data) == 0 {
			continue
		}
		d, err := in.campaignSource(src.schema, src.data, byDate)
		if err != nil {
			return nil, drops, err
		}
		drops.add(d)
		parsed++
	}

	out := make([]models.DailyRecord, 0, len(byDate))
	for _, rec := range byDate {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	in.log.Info("campaigns ingested",
		slog.Int("sources", parsed),
		slog.Int("days", len(out)),
		slog.Int("bad_date_rows", drops.BadDate))
	return out, drops, nil
}

// campaignSource accumulates one export into the shared per-date map.
// Accumulating across sources directly is the concatenate-then-regroup
// step: every product's rows for a date end up summed into one record.
func (in *Ingestor) campaignSource(schema SourceSchema, b []byte, byDate map[time.Time]*models.DailyRecord) (DropStats, error) {
	var drops DropStats
	rows, err := sheetRows(schema.Source, b)
	if err != nil {
		return drops, err
	}
	if len(rows) == 0 {
		return drops, &SchemaError{Source: schema.Source, Column: "Date"}
	}
	cols, err := schema.resolve(rows[0])
	if err != nil {
		return drops, err
	}

	for _, row := range rows[1:] {
		date, ok := parseDate(cell(row, cols[fieldDate]))
		if !ok {
			drops.BadDate++
			continue
		}
		rec, ok := byDate[date]
		if !ok {
			r := models.NewDailyRecord(date)
			rec = &r
			byDate[date] = rec
		}
		rec.Impressions += parseCount(cell(row, cols[fieldImpressions]))
		rec.Clicks += parseCount(cell(row, cols[fieldClicks]))
		rec.CampaignOrders += parseCount(cell(row, cols[fieldCampaignOrders]))
		rec.CampaignSpend = rec.CampaignSpend.Add(parseMoney(cell(row, cols[fieldSpend])))
		rec.CampaignSales = rec.CampaignSales.Add(parseMoney(cell(row, cols[fieldCampaignSales])))
	}
	return drops, nil
}
