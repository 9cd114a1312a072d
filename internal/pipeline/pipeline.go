// Package pipeline runs the one-shot batch computation: ingest the four
// uploads, merge into the daily table, and memoize both the table and
// the derived daily rows by a fingerprint of the input bytes.
package pipeline

import (
	"log/slog"
	"sync/atomic"

	"github.com/awu339/LeadIn-LeadOut/internal/cache"
	"github.com/awu339/LeadIn-LeadOut/internal/config"
	"github.com/awu339/LeadIn-LeadOut/internal/ingest"
	"github.com/awu339/LeadIn-LeadOut/internal/merge"
	"github.com/awu339/LeadIn-LeadOut/internal/metrics"
	"github.com/awu339/LeadIn-LeadOut/internal/models"
	"github.com/awu339/LeadIn-LeadOut/internal/utils"
)

// Result is everything one upload produces. It is immutable once built.
type Result struct {
	Fingerprint string            `json:"fingerprint"`
	Table       models.DailyTable `json:"-"`
	Drops       ingest.DropStats  `json:"drops"`
}

type Pipeline struct {
	ing    *ingest.Ingestor
	log    *slog.Logger
	tables *cache.Cache[*Result]
	daily  *cache.Cache[[]metrics.DailyRow]
	runs   atomic.Int64
}

func New(cfg config.Config, log *slog.Logger) *Pipeline {
	return &Pipeline{
		ing:    ingest.NewIngestor(cfg, log),
		log:    log,
		tables: cache.New[*Result](cfg.CacheEntries),
		daily:  cache.New[[]metrics.DailyRow](cfg.CacheEntries),
	}
}

// Run ingests and merges one file-set. The transactions buffer is
// mandatory; the three campaign buffers may be nil. The bool reports
// whether the result came from the cache.
func (p *Pipeline) Run(tx, sp, sb, sd []byte) (*Result, bool, error) {
	key := cache.Fingerprint(tx, sp, sb, sd)
	if res, ok := p.tables.Get(key); ok {
		utils.CacheLookups.WithLabelValues("tables", "hit").Inc()
		p.log.Debug("pipeline cache hit", slog.String("fingerprint", key))
		return res, true, nil
	}
	utils.CacheLookups.WithLabelValues("tables", "miss").Inc()

	p.runs.Add(1)
	utils.PipelineRuns.Inc()

	txRecs, txDrops, err := p.ing.Transactions(tx)
	if err != nil {
		return nil, false, err
	}
	campRecs, campDrops, err := p.ing.Campaigns(sp, sb, sd)
	if err != nil {
		return nil, false, err
	}
	utils.RowsDropped.WithLabelValues("filtered").Add(float64(txDrops.Filtered))
	utils.RowsDropped.WithLabelValues("bad_date").Add(float64(txDrops.BadDate + campDrops.BadDate))

	drops := txDrops
	drops.Filtered += campDrops.Filtered
	drops.BadDate += campDrops.BadDate

	res := &Result{
		Fingerprint: key,
		Table:       merge.Combine(txRecs, campRecs),
		Drops:       drops,
	}
	p.tables.Add(key, res)
	p.log.Info("pipeline run complete",
		slog.String("fingerprint", key),
		slog.Int("days", res.Table.Len()))
	return res, false, nil
}

// DailyRows derives the per-day metric rows for a result, cached
// separately under the same fingerprint.
func (p *Pipeline) DailyRows(res *Result) []metrics.DailyRow {
	if rows, ok := p.daily.Get(res.Fingerprint); ok {
		utils.CacheLookups.WithLabelValues("daily", "hit").Inc()
		return rows
	}
	utils.CacheLookups.WithLabelValues("daily", "miss").Inc()
	rows := metrics.NewService(res.Table).Daily()
	p.daily.Add(res.Fingerprint, rows)
	return rows
}

// ClearCache is the manual cache clear exposed to the caller.
func (p *Pipeline) ClearCache() {
	p.tables.Purge()
	p.daily.Purge()
}

// Runs reports how many times the full computation actually executed,
// excluding cache hits.
func (p *Pipeline) Runs() int64 { return p.runs.Load() }
