package ingest

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/awu339/LeadIn-LeadOut/internal/config"
	"github.com/awu339/LeadIn-LeadOut/internal/models"
)

// DropStats counts rows excluded during ingestion. The numbers never
// change the aggregates for well-formed input; they exist so that silent
// data loss is at least visible to the caller.
type DropStats struct {
	Filtered int `json:"filtered"`
	BadDate  int `json:"bad_date"`
}

func (d *DropStats) add(o DropStats) {
	d.Filtered += o.Filtered
	d.BadDate += o.BadDate
}

type Ingestor struct {
	cfg config.Config
	log *slog.Logger
}

func NewIngestor(cfg config.Config, log *slog.Logger) *Ingestor {
	return &Ingestor{cfg: cfg, log: log}
}

// Transactions parses a transaction export into per-date partial records
// carrying only the transaction-side fields. Rows outside the configured
// sales channel or order status are dropped and counted; so are rows
// whose purchase date does not parse.
func (in *Ingestor) Transactions(b []byte) ([]models.DailyRecord, DropStats, error) {
	var drops DropStats
	rows, err := sheetRows(transactionSchema.Source, b)
	if err != nil {
		return nil, drops, err
	}
	if len(rows) == 0 {
		return nil, drops, &SchemaError{Source: transactionSchema.Source, Column: "purchase-date"}
	}
	cols, err := transactionSchema.resolve(rows[0])
	if err != nil {
		return nil, drops, err
	}

	byDate := make(map[time.Time]*models.DailyRecord)
	for _, row := range rows[1:] {
		if strings.TrimSpace(cell(row, cols[fieldChannel])) != in.cfg.SalesChannel ||
			strings.TrimSpace(cell(row, cols[fieldStatus])) != in.cfg.OrderStatus {
			drops.Filtered++
			continue
		}
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
		rec.Orders++
		rec.TotalUnits += parseCount(cell(row, cols[fieldQuantity]))
		rec.Revenue = rec.Revenue.Add(parseMoney(cell(row, cols[fieldItemPrice])))
		rec.PromotionDiscount = rec.PromotionDiscount.Add(parseMoney(cell(row, cols[fieldItemDiscount])))
	}

	out := make([]models.DailyRecord, 0, len(byDate))
	for _, rec := range byDate {
		rec.NetRevenue = rec.Revenue.Sub(rec.PromotionDiscount)
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	in.log.Info("transactions ingested",
		slog.Int("days", len(out)),
		slog.Int("filtered_rows", drops.Filtered),
		slog.Int("bad_date_rows", drops.BadDate))
	return out, drops, nil
}
