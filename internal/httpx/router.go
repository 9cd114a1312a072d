package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/awu339/LeadIn-LeadOut/internal/export"
	"github.com/awu339/LeadIn-LeadOut/internal/ingest"
	"github.com/awu339/LeadIn-LeadOut/internal/metrics"
	"github.com/awu339/LeadIn-LeadOut/internal/models"
	"github.com/awu339/LeadIn-LeadOut/internal/pipeline"
	"github.com/awu339/LeadIn-LeadOut/internal/store"
	"github.com/awu339/LeadIn-LeadOut/internal/utils"
)

type handlers struct {
	log  *slog.Logger
	pipe *pipeline.Pipeline
	st   *store.Memory
}

func NewRouter(log *slog.Logger, pipe *pipeline.Pipeline, st *store.Memory) http.Handler {
	h := &handlers{log: log, pipe: pipe, st: st}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(utils.Metrics)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/ingest/run", h.ingestRun)
	mux.Get("/table", h.table)
	mux.Get("/table/export", h.tableExport)
	mux.Post("/periods/report", h.periodReport)
	mux.Post("/periods/lift", h.periodLift)
	mux.Post("/cache/clear", h.cacheClear)

	return mux
}

func (h *handlers) ingestRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	tx, err := formFile(r, "transactions")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if tx == nil {
		http.Error(w, "transactions file is required", http.StatusBadRequest)
		return
	}
	campaign := make(map[string][]byte, 3)
	for _, field := range []string{"sp", "sb", "sd"} {
		b, err := formFile(r, field)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		campaign[field] = b
	}
	h.runPipeline(w, tx, campaign["sp"], campaign["sb"], campaign["sd"])
}

func (h *handlers) runPipeline(w http.ResponseWriter, tx, sp, sb, sd []byte) {
	res, cached, err := h.pipe.Run(tx, sp, sb, sd)
	if err != nil {
		var schemaErr *ingest.SchemaError
		if errors.As(err, &schemaErr) {
			http.Error(w, schemaErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.st.Set(res)

	resp := map[string]any{
		"fingerprint": res.Fingerprint,
		"cached":      cached,
		"days":        res.Table.Len(),
		"drops":       res.Drops,
	}
	if dates := res.Table.Dates(); len(dates) > 0 {
		resp["from"] = dates[0].Format("2006-01-02")
		resp["to"] = dates[len(dates)-1].Format("2006-01-02")
	}
	writeJSON(w, resp)
}

func (h *handlers) table(w http.ResponseWriter, r *http.Request) {
	res, ok := h.st.Current()
	if !ok {
		http.Error(w, "no dataset ingested", http.StatusNotFound)
		return
	}
	rows := h.pipe.DailyRows(res)
	if r.URL.Query().Get("view") == "display" {
		type col struct {
			Date   string   `json:"date"`
			Values []string `json:"values"`
		}
		cols := make([]col, 0, len(rows))
		for _, row := range rows {
			cols = append(cols, col{Date: row.Date.Format("2006-01-02"), Values: row.FormatDaily()})
		}
		writeJSON(w, map[string]any{"fields": models.FieldNames, "columns": cols})
		return
	}
	writeJSON(w, map[string]any{"fields": models.FieldNames, "rows": rows})
}

func (h *handlers) tableExport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.st.Current()
	if !ok {
		http.Error(w, "no dataset ingested", http.StatusNotFound)
		return
	}
	grid := export.DailyGrid(h.pipe.DailyRows(res), r.URL.Query().Get("view") == "display")
	writeGrid(w, r, grid, "daily_table")
}

type periodRequest struct {
	Name  string   `json:"name"`
	Dates []string `json:"dates"`
}

type reportRequest struct {
	Periods []periodRequest `json:"periods"`
}

func (h *handlers) periodReport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.st.Current()
	if !ok {
		http.Error(w, "no dataset ingested", http.StatusNotFound)
		return
	}
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Periods) == 0 {
		http.Error(w, "at least one period is required", http.StatusBadRequest)
		return
	}

	svc := metrics.NewService(res.Table)
	periods := make([]export.PeriodRows, 0, len(req.Periods))
	for _, p := range req.Periods {
		dates, err := parseDates(p.Dates)
		if err != nil {
			http.Error(w, fmt.Sprintf("period %q: %v", p.Name, err), http.StatusBadRequest)
			return
		}
		summary, err := svc.PeriodSummary(dates)
		if err != nil {
			periodError(w, p.Name, err)
			return
		}
		average, err := svc.PeriodAverage(dates)
		if err != nil {
			periodError(w, p.Name, err)
			return
		}
		periods = append(periods, export.PeriodRows{Name: p.Name, Summary: summary, Average: average})
	}

	if format := r.URL.Query().Get("format"); format != "" {
		grid := export.PeriodGrid(periods, r.URL.Query().Get("view") == "display")
		writeGrid(w, r, grid, "period_report")
		return
	}

	type periodResp struct {
		Name             string      `json:"name"`
		Summary          metrics.Row `json:"summary"`
		Average          metrics.Row `json:"average"`
		SummaryFormatted []string    `json:"summary_formatted"`
		AverageFormatted []string    `json:"average_formatted"`
	}
	out := make([]periodResp, 0, len(periods))
	for _, p := range periods {
		out = append(out, periodResp{
			Name:             p.Name,
			Summary:          p.Summary,
			Average:          p.Average,
			SummaryFormatted: p.Summary.FormatSummary(),
			AverageFormatted: p.Average.FormatAverage(),
		})
	}
	writeJSON(w, map[string]any{"fields": models.FieldNames, "periods": out})
}

type comparisonRequest struct {
	Name       string `json:"name"`
	Baseline   string `json:"baseline"`
	Comparison string `json:"comparison"`
}

type liftRequest struct {
	Periods     []periodRequest     `json:"periods"`
	Comparisons []comparisonRequest `json:"comparisons"`
}

func (h *handlers) periodLift(w http.ResponseWriter, r *http.Request) {
	res, ok := h.st.Current()
	if !ok {
		http.Error(w, "no dataset ingested", http.StatusNotFound)
		return
	}
	var req liftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Periods) < 2 {
		http.Error(w, "at least two periods are required", http.StatusBadRequest)
		return
	}

	svc := metrics.NewService(res.Table)
	summaries := make(map[string]metrics.Row, len(req.Periods))
	for _, p := range req.Periods {
		dates, err := parseDates(p.Dates)
		if err != nil {
			http.Error(w, fmt.Sprintf("period %q: %v", p.Name, err), http.StatusBadRequest)
			return
		}
		row, err := svc.PeriodSummary(dates)
		if err != nil {
			periodError(w, p.Name, err)
			return
		}
		summaries[p.Name] = row
	}

	// Default comparison set mirrors the analyst workflow: every later
	// period against every earlier one, named "later → earlier".
	if len(req.Comparisons) == 0 {
		for i := range req.Periods {
			for j := i + 1; j < len(req.Periods); j++ {
				req.Comparisons = append(req.Comparisons, comparisonRequest{
					Name:       req.Periods[j].Name + " → " + req.Periods[i].Name,
					Baseline:   req.Periods[i].Name,
					Comparison: req.Periods[j].Name,
				})
			}
		}
	}

	columns := make([]export.LiftColumn, 0, len(req.Comparisons))
	for _, c := range req.Comparisons {
		base, ok := summaries[c.Baseline]
		if !ok {
			http.Error(w, fmt.Sprintf("comparison %q: unknown baseline period %q", c.Name, c.Baseline), http.StatusBadRequest)
			return
		}
		comp, ok := summaries[c.Comparison]
		if !ok {
			http.Error(w, fmt.Sprintf("comparison %q: unknown comparison period %q", c.Name, c.Comparison), http.StatusBadRequest)
			return
		}
		columns = append(columns, export.LiftColumn{Name: c.Name, Entries: metrics.Lift(base, comp)})
	}

	if format := r.URL.Query().Get("format"); format != "" {
		grid := export.LiftGrid(columns, r.URL.Query().Get("view") != "raw")
		writeGrid(w, r, grid, "lift_table")
		return
	}

	type liftResp struct {
		Name      string              `json:"name"`
		Entries   []metrics.LiftEntry `json:"entries"`
		Formatted []string            `json:"formatted"`
	}
	out := make([]liftResp, 0, len(columns))
	for _, c := range columns {
		out = append(out, liftResp{Name: c.Name, Entries: c.Entries, Formatted: metrics.FormatLift(c.Entries)})
	}
	writeJSON(w, map[string]any{"fields": models.FieldNames, "comparisons": out})
}

func (h *handlers) cacheClear(w http.ResponseWriter, r *http.Request) {
	h.pipe.ClearCache()
	writeJSON(w, map[string]any{"cleared": true})
}

func periodError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, metrics.ErrEmptySelection) {
		http.Error(w, fmt.Sprintf("period %q: %v", name, err), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
		}
		out = append(out, t)
	}
	return out, nil
}

// formFile reads one uploaded file, returning nil bytes when the field is
// absent. Only genuinely malformed parts error.
func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("file %q: %w", field, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeGrid(w http.ResponseWriter, r *http.Request, grid export.Grid, name string) {
	switch r.URL.Query().Get("format") {
	case "xlsx":
		b, err := grid.Workbook("Report")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
		w.Write(b)
	default:
		b, err := grid.CSV()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
		w.Write(b)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
